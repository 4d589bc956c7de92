package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/pcforge/storefront/internal/catalog"
	"github.com/pcforge/storefront/internal/compare"
	"github.com/pcforge/storefront/internal/pcbuild"
	pkgerrors "github.com/pcforge/storefront/pkg/errors"
	"github.com/pcforge/storefront/pkg/money"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		email, _ := cmd.Flags().GetString("email")
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && err != io.EOF {
				return err
			}
			password = strings.TrimSpace(line)
		}
		user, err := sess.Auth.Login(cmd.Context(), email, password)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Signed in as %s (%s). %d item(s) in cart.\n", user.Name, user.Role, sess.Cart.Count())
		return nil
	},
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := sess.Auth.Logout(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Signed out.")
		return nil
	},
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	RunE: func(cmd *cobra.Command, _ []string) error {
		user, ok := sess.Auth.User()
		if !ok {
			fmt.Fprintln(cmd.OutOrStdout(), "Not signed in.")
			return nil
		}
		if asJSON {
			return printJSON(cmd, user)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s <%s> role=%s\n", user.Name, user.Email, user.Role)
		return nil
	},
}

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "List products grouped by category",
	RunE: func(cmd *cobra.Command, _ []string) error {
		q := url.Values{}
		for _, name := range []string{"search", "category_id", "brand_id", "min_price", "max_price"} {
			if v, _ := cmd.Flags().GetString(name); v != "" {
				q.Set(name, v)
			}
		}
		f, err := catalog.ParseFilter(q)
		if err != nil {
			return err
		}
		view, err := sess.Catalog.Browse(cmd.Context(), f)
		if err != nil {
			return err
		}
		if asJSON {
			return printJSON(cmd, view)
		}
		tw := newTable(cmd)
		for _, g := range view.Groups {
			fmt.Fprintf(tw, "== %s ==\t\t\n", g.Title)
			for _, p := range g.Products {
				fmt.Fprintf(tw, "%d\t%s\t%s\n", p.ID, p.Name, money.Format(p.Price))
			}
		}
		return tw.Flush()
	},
}

var cartCmd = &cobra.Command{
	Use:   "cart",
	Short: "Show or change the cart",
}

var cartListCmd = &cobra.Command{
	Use:   "list",
	Short: "Show the cart",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireSignIn(); err != nil {
			return err
		}
		if err := sess.Cart.Fetch(cmd.Context()); err != nil {
			return err
		}
		return printCart(cmd)
	},
}

var cartAddCmd = &cobra.Command{
	Use:   "add <product-id> [quantity]",
	Short: "Add a product to the cart",
	Args:  cobra.RangeArgs(1, 2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignIn(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		qty := 1
		if len(args) == 2 {
			if qty, err = strconv.Atoi(args[1]); err != nil {
				return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be a number")
			}
		}
		if err := sess.Cart.Add(cmd.Context(), id, qty); err != nil {
			return err
		}
		return printCart(cmd)
	},
}

var cartRemoveCmd = &cobra.Command{
	Use:   "rm <product-id>",
	Short: "Remove a product from the cart",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignIn(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := sess.Cart.Remove(cmd.Context(), id); err != nil {
			return err
		}
		return printCart(cmd)
	},
}

var wishlistCmd = &cobra.Command{
	Use:   "wishlist",
	Short: "Manage the wishlist",
}

var wishlistToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Add a product to the wishlist, or remove it when present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignIn(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		added, err := sess.Wishlist.Toggle(cmd.Context(), id)
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "Product %d added to wishlist.\n", id)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Product %d removed from wishlist.\n", id)
		}
		return nil
	},
}

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare products side by side",
}

var compareTableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print one comparison table per category",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireSignIn(); err != nil {
			return err
		}
		if err := sess.Compare.Fetch(cmd.Context()); err != nil {
			return err
		}
		tables := compare.BuildTables(sess.Compare.Groups())
		if asJSON {
			return printJSON(cmd, tables)
		}
		if len(tables) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "Nothing to compare yet.")
			return nil
		}
		tw := newTable(cmd)
		for _, t := range tables {
			fmt.Fprintf(tw, "== %s ==", t.Category)
			for _, p := range t.Products {
				fmt.Fprintf(tw, "\t%s", p.Name)
			}
			fmt.Fprintln(tw)
			fmt.Fprint(tw, "Price")
			for _, p := range t.Products {
				fmt.Fprintf(tw, "\t%s", money.Format(p.Price))
			}
			fmt.Fprintln(tw)
			for i, col := range t.Attributes {
				fmt.Fprint(tw, col.Label())
				for _, cell := range t.Cells[i] {
					fmt.Fprintf(tw, "\t%s", cell)
				}
				fmt.Fprintln(tw)
			}
		}
		return tw.Flush()
	},
}

var compareToggleCmd = &cobra.Command{
	Use:   "toggle <product-id>",
	Short: "Add a product to the compare set, or remove it when present",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignIn(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		if err := sess.Compare.Fetch(cmd.Context()); err != nil {
			return err
		}
		product, err := sess.Catalog.Product(cmd.Context(), id)
		if err != nil {
			return err
		}
		added, err := sess.Compare.Toggle(cmd.Context(), product)
		if err != nil {
			return err
		}
		if added {
			fmt.Fprintf(cmd.OutOrStdout(), "%s added to compare.\n", product.Name)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "%s removed from compare.\n", product.Name)
		}
		return nil
	},
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Inspect saved PC builds",
}

var buildListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved builds",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if err := requireSignIn(); err != nil {
			return err
		}
		if err := sess.Builds.Fetch(cmd.Context()); err != nil {
			return err
		}
		builds := sess.Builds.Builds()
		if asJSON {
			return printJSON(cmd, builds)
		}
		tw := newTable(cmd)
		fmt.Fprintln(tw, "ID\tNAME\tPARTS\tTOTAL")
		for _, b := range builds {
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", b.ID, b.Name, len(b.Details), money.Format(pcbuild.BuildTotal(b)))
		}
		return tw.Flush()
	},
}

var buildShowCmd = &cobra.Command{
	Use:   "show <build-id>",
	Short: "Show one build slot by slot",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := requireSignIn(); err != nil {
			return err
		}
		id, err := parseID(args[0])
		if err != nil {
			return err
		}
		collisions, err := sess.LoadDraft(cmd.Context(), id)
		if err != nil {
			return err
		}
		categories, err := sess.Catalog.Categories(cmd.Context())
		if err != nil {
			return err
		}
		tw := newTable(cmd)
		return sess.Draft(func(a *pcbuild.Assembler) error {
			fmt.Fprintf(tw, "Build %d: %s\t\n", a.BuildID(), a.Name())
			for _, slot := range a.Slots(categories) {
				name := "-"
				if slot.Product != nil {
					name = fmt.Sprintf("%s (%s)", slot.Product.Name, money.Format(slot.Product.Price))
				}
				fmt.Fprintf(tw, "%s\t%s\n", slot.Category.Name, name)
			}
			fmt.Fprintf(tw, "Total\t%s\n", money.Format(a.Total()))
			for _, c := range collisions {
				fmt.Fprintf(tw, "note\t%s replaced %s\n", c.Kept.Name, c.Dropped.Name)
			}
			return tw.Flush()
		})
	},
}

func init() {
	loginCmd.Flags().String("email", "", "Account email")
	loginCmd.Flags().String("password", "", "Account password (prompted when empty)")
	_ = loginCmd.MarkFlagRequired("email")

	catalogCmd.Flags().String("search", "", "Name contains")
	catalogCmd.Flags().String("category_id", "", "Category id")
	catalogCmd.Flags().String("brand_id", "", "Brand id")
	catalogCmd.Flags().String("min_price", "", "Minimum price")
	catalogCmd.Flags().String("max_price", "", "Maximum price")

	cartCmd.AddCommand(cartListCmd, cartAddCmd, cartRemoveCmd)
	wishlistCmd.AddCommand(wishlistToggleCmd)
	compareCmd.AddCommand(compareTableCmd, compareToggleCmd)
	buildCmd.AddCommand(buildListCmd, buildShowCmd)
}

func requireSignIn() error {
	if !sess.Auth.IsAuthenticated() {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "Please log in first: shopctl login --email you@example.com")
	}
	return nil
}

func parseID(raw string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(raw), 10, 64)
	if err != nil || id <= 0 {
		return 0, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("%q is not a valid id", raw))
	}
	return id, nil
}

func printCart(cmd *cobra.Command) error {
	if asJSON {
		return printJSON(cmd, sess.Cart.Items())
	}
	tw := newTable(cmd)
	fmt.Fprintln(tw, "ID\tPRODUCT\tQTY\tPRICE")
	for _, it := range sess.Cart.Items() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\n", it.ProductID, it.Product.Name, it.Quantity, money.Format(it.Product.Price))
	}
	fmt.Fprintf(tw, "\t%d item(s)\t\t%s\n", sess.Cart.Count(), money.Format(sess.Cart.Total()))
	return tw.Flush()
}

func newTable(cmd *cobra.Command) *tabwriter.Writer {
	return tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
