package category

// Category is a product category shown in the storefront navigation.
type Category struct {
	Slug string `json:"slug"`
	Name string `json:"name"`
}

// All lists the supported product categories in navigation order.
var All = []Category{
	{Slug: "sneakers", Name: "Sneakers"},
	{Slug: "apparel", Name: "Apparel"},
	{Slug: "accessories", Name: "Accessories"},
	{Slug: "equipment", Name: "Equipment"},
}

// Names returns the display names of All.
func Names() []string {
	out := make([]string, len(All))
	for i, c := range All {
		out[i] = c.Name
	}
	return out
}

// Valid reports whether name is one of the supported category names.
func Valid(name string) bool {
	for _, c := range All {
		if c.Name == name {
			return true
		}
	}
	return false
}
