package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/shopspring/decimal"

	"github.com/vasiliy-maslov/storefront/internal/address"
	"github.com/vasiliy-maslov/storefront/internal/catalog"
	"github.com/vasiliy-maslov/storefront/internal/vendor"
)

type usageError struct {
	msg string
}

func (e *usageError) Error() string { return e.msg }

func usagef(format string, args ...any) error {
	return &usageError{msg: fmt.Sprintf(format, args...)}
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func argID(args []string, i int, what string) (uuid.UUID, error) {
	if len(args) <= i {
		return uuid.Nil, usagef("missing %s", what)
	}
	id, err := uuid.FromString(args[i])
	if err != nil {
		return uuid.Nil, usagef("invalid %s %q", what, args[i])
	}
	return id, nil
}

func argInt(args []string, i int, what string, def int) (int, error) {
	if len(args) <= i {
		return def, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil {
		return 0, usagef("invalid %s %q", what, args[i])
	}
	return n, nil
}

func optional(s string) *string {
	if s = strings.TrimSpace(s); s == "" {
		return nil
	}
	return &s
}

func newFlags(name string) *flag.FlagSet {
	return flag.NewFlagSet(name, flag.ContinueOnError)
}

func runHealth(ctx context.Context, a *app, _ []string) error {
	if err := a.s.Client.Health(ctx); err != nil {
		return err
	}
	fmt.Println("OK")
	return nil
}

func runProfile(ctx context.Context, a *app, _ []string) error {
	u, err := a.s.Vendor.Profile(ctx)
	if err != nil {
		return err
	}
	return printJSON(map[string]any{
		"name":     u.DisplayName(),
		"email":    u.Email,
		"role":     u.Role,
		"can_sell": u.Role.CanSell(),
	})
}

func runProducts(ctx context.Context, a *app, args []string) error {
	fs := newFlags("products")
	search := fs.String("search", "", "text to search for")
	sortBy := fs.String("sort", "", "newest, price_asc, price_desc or name")
	minPrice := fs.String("min", "", "minimum price")
	maxPrice := fs.String("max", "", "maximum price")
	page := fs.Int("page", 0, "page number")
	limit := fs.Int("limit", 0, "page size")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	q := catalog.Query{Search: *search, Sort: catalog.Sort(*sortBy), Page: *page, Limit: *limit}
	for _, p := range []struct {
		raw string
		dst **decimal.Decimal
	}{{*minPrice, &q.MinPrice}, {*maxPrice, &q.MaxPrice}} {
		if p.raw == "" {
			continue
		}
		d, err := decimal.NewFromString(p.raw)
		if err != nil {
			return usagef("invalid price %q", p.raw)
		}
		*p.dst = &d
	}

	products, err := a.s.Catalog.Search(ctx, q)
	if err != nil {
		return err
	}
	for _, p := range products {
		stock := "out of stock"
		if p.InStock() {
			stock = fmt.Sprintf("%d in stock", p.StockQuantity)
		}
		fmt.Printf("%s  %-30s %10s  %s\n", p.ID, p.Name, p.Price.StringFixed(2), stock)
	}
	return nil
}

func runProduct(ctx context.Context, a *app, args []string) error {
	id, err := argID(args, 0, "product id")
	if err != nil {
		return err
	}
	p, err := a.s.Catalog.Product(ctx, id)
	if err != nil {
		return err
	}
	return printJSON(p)
}

func runCart(ctx context.Context, a *app, args []string) error {
	m := a.s.Cart
	sub := "show"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	var err error
	switch sub {
	case "show":
	case "add":
		var productID uuid.UUID
		if productID, err = argID(args, 0, "product id"); err != nil {
			return err
		}
		qty, err := argInt(args, 1, "quantity", 1)
		if err != nil {
			return err
		}
		p, err := a.s.Catalog.Product(ctx, productID)
		if err != nil {
			return err
		}
		stock := p.StockQuantity
		if !p.IsActive {
			stock = 0
		}
		if err := m.Add(ctx, productID, qty, stock); err != nil {
			return err
		}
		a.s.Notifier.Success("Added to cart")
	case "update":
		var itemID uuid.UUID
		if itemID, err = argID(args, 0, "item id"); err != nil {
			return err
		}
		if len(args) < 2 {
			return usagef("missing quantity")
		}
		qty, perr := argInt(args, 1, "quantity", 0)
		if perr != nil {
			return perr
		}
		err = m.UpdateQuantity(ctx, itemID, qty)
	case "inc", "dec", "remove":
		var itemID uuid.UUID
		if itemID, err = argID(args, 0, "item id"); err != nil {
			return err
		}
		switch sub {
		case "inc":
			err = m.Increment(ctx, itemID)
		case "dec":
			err = m.Decrement(ctx, itemID)
		default:
			err = m.Remove(ctx, itemID)
		}
	case "clear":
		err = m.Clear(ctx)
	default:
		return usagef("unknown cart command %q", sub)
	}
	if err != nil {
		return err
	}

	c := m.Snapshot()
	if c.IsEmpty() {
		fmt.Println("Your cart is empty")
		return nil
	}
	for _, it := range c.Items {
		fmt.Printf("%s  %-30s %3d x %10s = %10s\n", it.ID, it.ProductName, it.Quantity, it.ProductPrice.StringFixed(2), it.Subtotal.StringFixed(2))
	}
	fmt.Printf("%d items, subtotal %s\n", c.ItemCount, c.Subtotal.StringFixed(2))
	return nil
}

// addressFlags registers the address form on fs.
func addressFlags(fs *flag.FlagSet, prefix string) func() address.Input {
	name := fs.String(prefix+"name", "", "full name")
	phone := fs.String(prefix+"phone", "", "phone number")
	line1 := fs.String(prefix+"line1", "", "address line 1")
	line2 := fs.String(prefix+"line2", "", "address line 2")
	city := fs.String(prefix+"city", "", "city")
	state := fs.String(prefix+"state", "", "state or region")
	postal := fs.String(prefix+"postal-code", "", "postal code")
	country := fs.String(prefix+"country", "", "country")
	return func() address.Input {
		return address.Input{
			FullName:     *name,
			Phone:        *phone,
			AddressLine1: *line1,
			AddressLine2: optional(*line2),
			City:         *city,
			State:        optional(*state),
			PostalCode:   optional(*postal),
			Country:      *country,
		}
	}
}

func runAddresses(ctx context.Context, a *app, args []string) error {
	book := a.s.Addresses
	sub := "list"
	if len(args) > 0 {
		sub, args = args[0], args[1:]
	}

	switch sub {
	case "list":
		list, err := book.List(ctx)
		if err != nil {
			return err
		}
		for _, addr := range list {
			mark := " "
			if addr.IsDefault {
				mark = "*"
			}
			fmt.Printf("%s %s  %s, %s, %s, %s\n", mark, addr.ID, addr.FullName, addr.AddressLine1, addr.City, addr.Country)
		}
		return nil
	case "add", "update":
		var id uuid.UUID
		if sub == "update" {
			var err error
			if id, err = argID(args, 0, "address id"); err != nil {
				return err
			}
			args = args[1:]
		}
		fs := newFlags("addresses " + sub)
		form := addressFlags(fs, "")
		isDefault := fs.Bool("default", false, "make this the default address")
		if err := fs.Parse(args); err != nil {
			return usagef("%v", err)
		}
		in := form()
		in.IsDefault = *isDefault

		var (
			addr *address.Address
			err  error
		)
		if sub == "add" {
			addr, err = book.Create(ctx, in)
		} else {
			addr, err = book.Update(ctx, id, in)
		}
		if err != nil {
			return err
		}
		return printJSON(addr)
	case "delete", "default":
		id, err := argID(args, 0, "address id")
		if err != nil {
			return err
		}
		if sub == "delete" {
			return book.Delete(ctx, id)
		}
		return book.SetDefault(ctx, id)
	default:
		return usagef("unknown addresses command %q", sub)
	}
}

func runBecomeVendor(ctx context.Context, a *app, args []string) error {
	fs := newFlags("become-vendor")
	name := fs.String("business-name", "", "business name")
	phone := fs.String("phone", "", "business phone")
	description := fs.String("description", "", "what you sell")
	if err := fs.Parse(args); err != nil {
		return usagef("%v", err)
	}

	resp, err := a.s.Vendor.BecomeVendor(ctx, vendor.BecomeVendorRequest{
		BusinessName:        *name,
		Phone:               *phone,
		BusinessDescription: optional(*description),
	})
	if err != nil {
		return err
	}
	return printJSON(resp)
}

func runShop(ctx context.Context, a *app, args []string) error {
	if len(args) == 0 {
		return usagef("missing shop command")
	}
	switch args[0] {
	case "slug":
		fmt.Println(vendor.Slug(strings.Join(args[1:], " ")))
		return nil
	case "create":
		fs := newFlags("shop create")
		name := fs.String("name", "", "shop name")
		description := fs.String("description", "", "shop description")
		logo := fs.String("logo-url", "", "logo image URL")
		banner := fs.String("banner-url", "", "banner image URL")
		email := fs.String("email", "", "contact email")
		phone := fs.String("phone", "", "contact phone")
		city := fs.String("city", "", "city")
		country := fs.String("country", "", "country")
		if err := fs.Parse(args[1:]); err != nil {
			return usagef("%v", err)
		}
		if *name != "" {
			fmt.Fprintf(os.Stderr, "shop URL will be /shops/%s\n", vendor.Slug(*name))
		}

		shop, err := a.s.Vendor.CreateShop(ctx, vendor.CreateShopRequest{
			Name:        *name,
			Description: *description,
			LogoURL:     optional(*logo),
			BannerURL:   optional(*banner),
			Email:       optional(*email),
			Phone:       optional(*phone),
			City:        optional(*city),
			Country:     optional(*country),
		})
		if err != nil {
			return err
		}
		return printJSON(shop)
	default:
		return usagef("unknown shop command %q", args[0])
	}
}
