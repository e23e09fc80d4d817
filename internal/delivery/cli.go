package delivery

import (
	"context"
	"fmt"
	"strconv"

	"github.com/urfave/cli/v2"

	"github.com/butrintmetaj7/shop-client/internal/clients"
	"github.com/butrintmetaj7/shop-client/internal/domain"
)

// Commands returns the CLI command tree. Each command restores the persisted
// session before acting, since every invocation starts a fresh process.
func (a *App) Commands() []*cli.Command {
	return []*cli.Command{
		{
			Name:  "login",
			Usage: "Authenticate and store the session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Required: true},
			},
			Action: func(c *cli.Context) error {
				a.restoreSession(c.Context)
				err := a.session.Login(c.Context, domain.Credentials{
					Email:    c.String("email"),
					Password: c.String("password"),
				})
				if err != nil {
					return cli.Exit(a.session.Err(), 1)
				}
				user := a.session.User()
				fmt.Printf("Logged in as %s <%s>\n", user.Name, user.Email)
				if intended, ok := a.guard.ConsumeIntendedRoute(); ok {
					a.Redirect(intended)
					fmt.Printf("Continuing to %s\n", intended)
				}
				return nil
			},
		},
		{
			Name:  "register",
			Usage: "Create an account and store the session",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "name", Required: true},
				&cli.StringFlag{Name: "email", Required: true},
				&cli.StringFlag{Name: "password", Required: true},
				&cli.StringFlag{Name: "password-confirmation"},
			},
			Action: func(c *cli.Context) error {
				a.restoreSession(c.Context)
				confirmation := c.String("password-confirmation")
				if confirmation == "" {
					confirmation = c.String("password")
				}
				err := a.session.Register(c.Context, domain.RegisterCredentials{
					Name:                 c.String("name"),
					Email:                c.String("email"),
					Password:             c.String("password"),
					PasswordConfirmation: confirmation,
				})
				if err != nil {
					return cli.Exit(a.session.Err(), 1)
				}
				user := a.session.User()
				fmt.Printf("Registered %s <%s>\n", user.Name, user.Email)
				return nil
			},
		},
		{
			Name:  "logout",
			Usage: "End the session locally and remotely",
			Action: func(c *cli.Context) error {
				a.restoreSession(c.Context)
				a.session.Logout(c.Context)
				fmt.Println("Logged out")
				return nil
			},
		},
		{
			Name:  "whoami",
			Usage: "Show the authenticated user",
			Action: func(c *cli.Context) error {
				a.restoreSession(c.Context)
				if !a.navigate("/profile") {
					return cli.Exit("Not logged in", 1)
				}
				if err := a.session.FetchUser(c.Context); err != nil {
					return cli.Exit(clients.ErrorMessage(err, "Failed to fetch user"), 1)
				}
				user := a.session.User()
				fmt.Printf("%d\t%s\t%s\t%s\n", user.ID, user.Name, user.Email, user.Role)
				return nil
			},
		},
		{
			Name:  "products",
			Usage: "List catalog products",
			Flags: []cli.Flag{
				&cli.IntFlag{Name: "page", Value: 1},
			},
			Action: func(c *cli.Context) error {
				a.restoreSession(c.Context)
				a.navigate("/products")
				if err := a.catalog.FetchProducts(c.Context, c.Int("page")); err != nil {
					return cli.Exit(a.catalog.Err(), 1)
				}
				for _, product := range a.catalog.List() {
					fmt.Printf("%d\t%-24s\t%8.2f\t%s\n", product.ID, product.Title, product.Price, product.Category)
				}
				current, last, _, total := a.catalog.Pagination()
				fmt.Printf("page %d of %d (%d products)\n", current, last, total)
				return nil
			},
		},
		{
			Name:      "product",
			Usage:     "Show a single product",
			ArgsUsage: "<id>",
			Action: func(c *cli.Context) error {
				id, err := strconv.Atoi(c.Args().First())
				if err != nil {
					return cli.Exit("product id must be a number", 1)
				}
				a.restoreSession(c.Context)
				product, err := a.productByID(c.Context, id)
				if err != nil {
					return cli.Exit(clients.ErrorMessage(err, "Failed to fetch product"), 1)
				}
				fmt.Printf("%d\t%s\n%.2f\n%s\n", product.ID, product.Title, product.Price, product.Description)
				return nil
			},
		},
		{
			Name:  "cart",
			Usage: "Manage the shopping cart",
			Subcommands: []*cli.Command{
				{
					Name:  "show",
					Usage: "Print cart line items and total",
					Action: func(c *cli.Context) error {
						a.restoreSession(c.Context)
						if !a.navigate("/cart") {
							return cli.Exit("Login required to view the cart", 1)
						}
						if err := a.catalog.FetchAllProducts(c.Context); err != nil {
							return cli.Exit(a.catalog.Err(), 1)
						}
						lines := a.cart.FormattedCart(a.catalog)
						if len(lines) == 0 {
							fmt.Println("Cart is empty")
							return nil
						}
						for _, line := range lines {
							fmt.Printf("%d\t%-24s\tx%d\t%8.2f\n", line.ID, line.Title, line.Quantity, line.Cost)
						}
						fmt.Printf("total\t%8.2f (%d items)\n", a.cart.Total(a.catalog), a.cart.Count())
						return nil
					},
				},
				{
					Name:      "add",
					Usage:     "Add one unit of a product",
					ArgsUsage: "<product-id>",
					Action: func(c *cli.Context) error {
						id, err := strconv.Atoi(c.Args().First())
						if err != nil {
							return cli.Exit("product id must be a number", 1)
						}
						a.restoreSession(c.Context)
						if !a.navigate("/cart") {
							return cli.Exit("Login required to modify the cart", 1)
						}
						a.cart.Add(id)
						fmt.Printf("Cart now holds %d items\n", a.cart.Count())
						return nil
					},
				},
				{
					Name:      "remove",
					Usage:     "Remove one unit of a product",
					ArgsUsage: "<product-id>",
					Action: func(c *cli.Context) error {
						id, err := strconv.Atoi(c.Args().First())
						if err != nil {
							return cli.Exit("product id must be a number", 1)
						}
						a.restoreSession(c.Context)
						if !a.navigate("/cart") {
							return cli.Exit("Login required to modify the cart", 1)
						}
						a.cart.Remove(id)
						fmt.Printf("Cart now holds %d items\n", a.cart.Count())
						return nil
					},
				},
				{
					Name:  "clear",
					Usage: "Empty the cart",
					Action: func(c *cli.Context) error {
						a.restoreSession(c.Context)
						if !a.navigate("/cart") {
							return cli.Exit("Login required to modify the cart", 1)
						}
						a.cart.Clear()
						fmt.Println("Cart cleared")
						return nil
					},
				},
			},
		},
	}
}

// restoreSession replays the stored token against the API. An invalid stored
// session is rolled back inside InitializeAuth; commands carry on
// unauthenticated.
func (a *App) restoreSession(ctx context.Context) {
	if err := a.session.InitializeAuth(ctx); err != nil {
		a.log.Debugf("App: session restore failed: %v", err)
	}
}

func (a *App) productByID(ctx context.Context, id int) (*domain.Product, error) {
	if product, ok := a.catalog.GetProductByID(id); ok {
		return &product, nil
	}
	return a.products.Get(ctx, id)
}
