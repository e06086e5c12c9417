// Commande storefront: client en ligne de commande de la boutique Furniro.
// L'état (session, panier, favoris) est conservé dans un fichier SQLite entre deux lancements.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"text/tabwriter"
	"time"

	"furniro_back_end/internal/client"
	"furniro_back_end/internal/models"
	"furniro_back_end/internal/storefront"

	"github.com/joho/godotenv"
)

const usage = `Usage: storefront [-api URL] [-db FILE] <commande> [arguments]

Commandes:
  products [-category C] [-search S]
  product <id>
  register <nom> <email> <mot de passe>
  login <email> <mot de passe>
  logout
  cart [add <id> <qté> | set <id> <qté> | remove <id> | clear]
  favorites [add <id> | remove <id> | clear]
  checkout -method <Stripe|UPI|Cash On Delivery> -first -last -phone -email -street -city -province -postal [-country] [-company] [-info]
  orders
`

func main() {
	// .env optionnel
	_ = godotenv.Load()

	apiURL := flag.String("api", envOr("FURNIRO_API_URL", "http://localhost:5000"), "URL de l'API Furniro")
	dbPath := flag.String("db", envOr("FURNIRO_STOREFRONT_DB", "furniro-storefront.db"), "fichier SQLite de l'état local")
	timeout := flag.Duration("timeout", client.DefaultTimeout, "délai des requêtes HTTP")
	flag.Usage = func() { fmt.Fprint(os.Stderr, usage) }
	flag.Parse()
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := storefront.OpenLocalStore(*dbPath)
	if err != nil {
		log.Fatalf("❌ Ouverture de l'état local impossible: %v", err)
	}
	defer store.Close()

	notifier := storefront.NewNotifier(storefront.NotificationTTL, printNotification)
	app := storefront.New(client.New(*apiURL, *timeout), store, storefront.Options{Notifier: notifier})
	if err := app.Init(ctx); err != nil {
		log.Fatalf("❌ Lecture de l'état local impossible: %v", err)
	}

	err = run(ctx, app, flag.Arg(0), flag.Args()[1:])
	// Les écritures locales et la synchronisation en file doivent se terminer avant la sortie.
	app.Close()
	if err != nil {
		fmt.Fprintln(os.Stderr, "❌", err)
		os.Exit(1)
	}
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func printNotification(n storefront.Notification) {
	icon := "ℹ️"
	switch n.Level {
	case storefront.LevelSuccess:
		icon = "✅"
	case storefront.LevelError:
		icon = "❌"
	}
	fmt.Println(icon, n.Message)
}

func run(ctx context.Context, app *storefront.App, cmd string, args []string) error {
	switch cmd {
	case "products":
		return listProducts(ctx, app, args)
	case "product":
		if len(args) != 1 {
			return errors.New("usage: product <id>")
		}
		p, err := app.Product(ctx, args[0])
		if err != nil {
			return err
		}
		printProducts([]models.Product{*p})
		return nil
	case "register":
		if len(args) != 3 {
			return errors.New("usage: register <nom> <email> <mot de passe>")
		}
		_, err := app.Register(ctx, args[0], args[1], args[2])
		return err
	case "login":
		if len(args) != 2 {
			return errors.New("usage: login <email> <mot de passe>")
		}
		_, err := app.Login(ctx, args[0], args[1])
		return err
	case "logout":
		return app.Logout(ctx)
	case "cart":
		return cartCommand(ctx, app, args)
	case "favorites":
		return favoritesCommand(ctx, app, args)
	case "checkout":
		return checkout(ctx, app, args)
	case "orders":
		return listOrders(ctx, app)
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("commande inconnue: %s", cmd)
	}
}

func listProducts(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("products", flag.ContinueOnError)
	category := fs.String("category", "", "catégorie")
	search := fs.String("search", "", "recherche texte")
	if err := fs.Parse(args); err != nil {
		return err
	}
	products, err := app.Products(ctx, models.ProductFilter{Category: *category, Search: *search})
	if err != nil {
		return err
	}
	printProducts(products)
	return nil
}

func printProducts(products []models.Product) {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOM\tCATÉGORIE\tPRIX\tSTOCK")
	for _, p := range products {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", p.ID.Hex(), p.Name, p.Category, formatPrice(p.Price), p.Stock)
	}
	w.Flush()
}

func formatPrice(v int64) string {
	return "Rs. " + strconv.FormatInt(v, 10)
}

func parseQty(s string) (int, error) {
	qty, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("quantité invalide: %q", s)
	}
	return qty, nil
}

func cartCommand(ctx context.Context, app *storefront.App, args []string) error {
	if len(args) == 0 {
		printCart(app)
		return nil
	}
	switch args[0] {
	case "add":
		if len(args) != 3 {
			return errors.New("usage: cart add <id> <qté>")
		}
		qty, err := parseQty(args[2])
		if err != nil {
			return err
		}
		p, err := app.Product(ctx, args[1])
		if err != nil {
			return err
		}
		if err := app.AddToCart(*p, qty); err != nil {
			return err
		}
	case "set":
		if len(args) != 3 {
			return errors.New("usage: cart set <id> <qté>")
		}
		qty, err := parseQty(args[2])
		if err != nil {
			return err
		}
		app.SetQuantity(args[1], qty)
	case "remove":
		if len(args) != 2 {
			return errors.New("usage: cart remove <id>")
		}
		app.RemoveFromCart(args[1])
	case "clear":
		app.ClearCart()
	default:
		return fmt.Errorf("sous-commande inconnue: cart %s", args[0])
	}
	printCart(app)
	return nil
}

func printCart(app *storefront.App) {
	items := app.Cart()
	if len(items) == 0 {
		fmt.Println("🛒 Panier vide")
		return
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNOM\tQTÉ\tPRIX")
	for _, item := range items {
		fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", item.Product.ID.Hex(), item.Product.Name, item.Quantity,
			formatPrice(item.Product.Price*int64(item.Quantity)))
	}
	fmt.Fprintf(w, "\t\t%d\t%s\n", app.CartCount(), formatPrice(app.CartTotal()))
	w.Flush()
}

func favoritesCommand(ctx context.Context, app *storefront.App, args []string) error {
	if len(args) == 0 {
		printFavorites(app)
		return nil
	}
	switch args[0] {
	case "add":
		if len(args) != 2 {
			return errors.New("usage: favorites add <id>")
		}
		p, err := app.Product(ctx, args[1])
		if err != nil {
			return err
		}
		if err := app.AddFavorite(*p); err != nil {
			return err
		}
	case "remove":
		if len(args) != 2 {
			return errors.New("usage: favorites remove <id>")
		}
		app.RemoveFavorite(args[1])
	case "clear":
		app.ClearFavorites()
	default:
		return fmt.Errorf("sous-commande inconnue: favorites %s", args[0])
	}
	printFavorites(app)
	return nil
}

func printFavorites(app *storefront.App) {
	favorites := app.Favorites()
	if len(favorites) == 0 {
		fmt.Println("❤️ Aucun favori")
		return
	}
	printProducts(favorites)
}

func checkout(ctx context.Context, app *storefront.App, args []string) error {
	fs := flag.NewFlagSet("checkout", flag.ContinueOnError)
	method := fs.String("method", models.PaymentMethodStripe, "Stripe, UPI ou Cash On Delivery")
	var in storefront.CheckoutInput
	fs.StringVar(&in.Billing.FirstName, "first", "", "prénom")
	fs.StringVar(&in.Billing.LastName, "last", "", "nom")
	fs.StringVar(&in.Billing.CompanyName, "company", "", "société")
	fs.StringVar(&in.Billing.Phone, "phone", "", "téléphone")
	fs.StringVar(&in.Billing.Email, "email", "", "email de facturation")
	fs.StringVar(&in.Shipping.StreetAddress, "street", "", "adresse")
	fs.StringVar(&in.Shipping.City, "city", "", "ville")
	fs.StringVar(&in.Shipping.Province, "province", "", "région")
	fs.StringVar(&in.Shipping.Country, "country", models.DefaultCountry, "pays")
	fs.StringVar(&in.Shipping.PostalCode, "postal", "", "code postal")
	fs.StringVar(&in.AdditionalInfo, "info", "", "informations complémentaires")
	if err := fs.Parse(args); err != nil {
		return err
	}
	in.PaymentMethod = *method

	res, err := app.Checkout(ctx, in)
	if res != nil && res.Order != nil {
		fmt.Printf("📦 Commande %s (%s) - %s\n", res.Order.ID.Hex(), res.Order.OrderStatus, formatPrice(res.Order.TotalAmount))
	}
	if res != nil && res.Payment != nil && res.Payment.TransactionID != "" {
		fmt.Println("💳 Transaction", res.Payment.TransactionID)
	}
	return err
}

func listOrders(ctx context.Context, app *storefront.App) error {
	orders, err := app.Orders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("📦 Aucune commande")
		return nil
	}
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tDATE\tSTATUT\tPAIEMENT\tTOTAL")
	for _, o := range orders {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", o.ID.Hex(), o.CreatedAt.Format(time.DateOnly),
			o.OrderStatus, o.PaymentStatus, formatPrice(o.TotalAmount))
	}
	w.Flush()
	return nil
}
