package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/indianleto/storefront-backend/internal/cart"
	"github.com/indianleto/storefront-backend/internal/catalog"
	"github.com/indianleto/storefront-backend/internal/quotation"
	"github.com/indianleto/storefront-backend/pkg/config"
	"github.com/indianleto/storefront-backend/pkg/logger"
	"github.com/indianleto/storefront-backend/pkg/redis"
)

const redisCartTTL = 30 * 24 * time.Hour

// cliConfig is the cart tool's own slice of the environment; it does not
// need STOREFRONT_APP_ENV like the server does.
type cliConfig struct {
	CartFile string        `envconfig:"STOREFRONT_CART_FILE" default:".storefront-cart.json"`
	APIURL   string        `envconfig:"STOREFRONT_API_URL" default:"http://localhost:5000"`
	Timeout  time.Duration `envconfig:"STOREFRONT_CLI_TIMEOUT" default:"10s"`
	Currency string        `envconfig:"STOREFRONT_QUOTE_CURRENCY" default:"INR"`
	RedisURL string        `envconfig:"STOREFRONT_REDIS_URL"`
	LogLevel string        `envconfig:"STOREFRONT_CLI_LOG_LEVEL" default:"warn"`
}

var errUsage = errors.New("usage: cart <show|add|update|remove|clear|summary|submit> [flags]")

type app struct {
	store     *cart.Store
	catalog   *catalog.Catalog
	assembler quotation.Assembler
	client    *quoteClient
	out       io.Writer
}

func main() {
	_ = godotenv.Load()

	var cfg cliConfig
	if err := envconfig.Process(config.EnvPrefix, &cfg); err != nil {
		fmt.Fprintln(os.Stderr, "parsing config:", err)
		os.Exit(1)
	}

	logg := logger.New(logger.Options{
		ServiceName: "cart",
		Level:       logger.ParseLevel(cfg.LogLevel),
		Output:      os.Stderr,
		Format:      logger.FormatConsole,
	})
	ctx := context.Background()

	cat, err := catalog.Load()
	if err != nil {
		logg.Error(ctx, "failed to load product catalog", err)
		os.Exit(1)
	}

	storage := cart.NewFileStorage(cfg.CartFile)
	if cfg.RedisURL != "" {
		client, err := redis.New(ctx, config.RedisConfig{URL: cfg.RedisURL, PoolSize: 2, DialTimeout: 5 * time.Second}, logg)
		if err != nil {
			logg.Error(ctx, "failed to connect to redis", err)
			os.Exit(1)
		}
		defer client.Close()
		storage = cart.NewRedisStorage(client, redisCartTTL)
	}

	a := &app{
		store:     cart.NewStore(storage, logg),
		catalog:   cat,
		assembler: quotation.NewAssembler(cfg.Currency),
		client:    newQuoteClient(cfg.APIURL, cfg.Timeout),
		out:       os.Stdout,
	}

	if err := a.run(ctx, os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		if errors.Is(err, errUsage) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}

func (a *app) run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return errUsage
	}
	cmd, rest := args[0], args[1:]
	items := a.store.Load(ctx)

	switch cmd {
	case "show":
		a.print(items)
		return nil

	case "summary":
		fmt.Fprintln(a.out, a.assembler.Summarize(items))
		return nil

	case "clear":
		a.store.Clear(ctx)
		fmt.Fprintln(a.out, "Cart cleared")
		return nil

	case "add", "update", "remove":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		productID := fs.String("product", "", "catalog product id")
		size := fs.String("size", "", "variant size")
		qty := fs.Int("qty", 0, "quantity")
		if err := fs.Parse(rest); err != nil {
			return fmt.Errorf("%s: %w", cmd, err)
		}
		product, ok := a.catalog.Get(*productID)
		if !ok {
			return fmt.Errorf("unknown product %q", *productID)
		}
		if !product.HasSize(*size) {
			return fmt.Errorf("product %s has no size %q", product.ID, *size)
		}

		switch cmd {
		case "add":
			quantity := catalog.ClampQuantity(*qty)
			if quantity <= 0 {
				return fmt.Errorf("add: -qty must be at least 1")
			}
			items = a.store.Add(ctx, items, product, *size, quantity)
		case "update":
			items = a.store.UpdateQuantity(ctx, items, product.ID, *size, catalog.ClampQuantity(*qty), product.PriceTiers)
		default:
			items = a.store.Remove(ctx, items, product.ID, *size)
		}
		a.print(items)
		return nil

	case "submit":
		fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
		fs.SetOutput(io.Discard)
		name := fs.String("name", "", "customer name")
		phone := fs.String("phone", "", "customer phone")
		email := fs.String("email", "", "customer email")
		notes := fs.String("notes", "", "order notes")
		if err := fs.Parse(rest); err != nil {
			return fmt.Errorf("submit: %w", err)
		}
		if len(items) == 0 {
			return fmt.Errorf("cart is empty")
		}
		quoteID, err := a.client.Submit(ctx, quotation.Request{
			Customer: quotation.Customer{Name: *name, Phone: *phone, Email: *email},
			Cart:     quotation.FromLineItems(items),
			Notes:    *notes,
		})
		if err != nil {
			return err
		}
		a.store.Clear(ctx)
		fmt.Fprintf(a.out, "Quotation submitted successfully: %s\n", quoteID)
		return nil
	}

	return errUsage
}

func (a *app) print(items []cart.LineItem) {
	if len(items) == 0 {
		fmt.Fprintln(a.out, "Cart is empty")
		return
	}
	for _, item := range items {
		fmt.Fprintf(a.out, "%s\t%s\t%s\t%d x %s = %s\n",
			item.ProductID, item.ProductTitle, item.Variant.Size,
			item.Quantity, item.UnitPrice.StringFixed(2), item.LineTotal().StringFixed(2))
	}
	fmt.Fprintf(a.out, "Items: %d\tTotal: %s %s\n", cart.ItemCount(items), a.assembler.Total(items).StringFixed(2), a.assembler.Currency)
}
