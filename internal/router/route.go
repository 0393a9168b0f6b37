package router

import (
	"regexp"
	"strconv"
	"strings"
)

type View string

const (
	ViewHome      View = "home"
	ViewProfile   View = "profil"
	ViewOrders    View = "orders"
	ViewChat      View = "chat"
	ViewCart      View = "cart"
	ViewAdmin     View = "admin"
	ViewProduct   View = "product"
	ViewFavorites View = "favorites"
)

var Views = []View{ViewHome, ViewProfile, ViewOrders, ViewChat, ViewCart, ViewAdmin, ViewProduct, ViewFavorites}

func (v View) Valid() bool {
	for _, known := range Views {
		if v == known {
			return true
		}
	}
	return false
}

// ParseView maps a view name to a known view; unknown names become home.
func ParseView(name string) View {
	v := View(strings.ToLower(strings.TrimSpace(name)))
	if v.Valid() {
		return v
	}
	return ViewHome
}

// Route is the view state encoded in a URL fragment. ProductID is 0 when no
// product is selected.
type Route struct {
	View      View  `json:"view"`
	ProductID int64 `json:"product_id,omitempty"`
}

var productRe = regexp.MustCompile(`(?i)^product/(\d+)`)

func trimFragment(fragment string) string {
	s := strings.TrimPrefix(fragment, "#")
	return strings.TrimPrefix(s, "/")
}

// Parse derives the route from a fragment such as "#/product/7".
func Parse(fragment string) Route {
	hash := trimFragment(fragment)

	view := ViewHome
	for _, part := range strings.Split(strings.ToLower(hash), "/") {
		if part != "" {
			view = ParseView(part)
			break
		}
	}

	route := Route{View: view}
	if m := productRe.FindStringSubmatch(hash); m != nil {
		if id, err := strconv.ParseInt(m[1], 10, 64); err == nil {
			route.ProductID = id
		}
	}
	return route
}

// Fragment is the canonical fragment of a navigation target.
func Fragment(view View, productID int64) string {
	switch {
	case view == ViewProduct && productID > 0:
		return "#/product/" + strconv.FormatInt(productID, 10)
	case view == ViewHome:
		return "#/"
	default:
		return "#/" + string(view)
	}
}
