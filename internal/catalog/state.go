package catalog

// State is what a list view renders: the current page only, plus the
// running total of the whole collection.
type State struct {
	Products []Product `json:"products"`
	Loading  bool      `json:"loading"`
	Error    string    `json:"error,omitempty"`
	Total    int       `json:"total"`
}

type ActionType int

const (
	ActionSetLoading ActionType = iota + 1
	ActionSetError
	ActionSetProducts
	ActionSetTotal
	ActionAddProduct
	ActionUpdateProduct
	ActionDeleteProduct
)

func (t ActionType) String() string {
	switch t {
	case ActionSetLoading:
		return "SET_LOADING"
	case ActionSetError:
		return "SET_ERROR"
	case ActionSetProducts:
		return "SET_PRODUCTS"
	case ActionSetTotal:
		return "SET_TOTAL"
	case ActionAddProduct:
		return "ADD_PRODUCT"
	case ActionUpdateProduct:
		return "UPDATE_PRODUCT"
	case ActionDeleteProduct:
		return "DELETE_PRODUCT"
	default:
		return "UNKNOWN"
	}
}

// Action carries the payload for one transition. Only the field matching
// Type is read.
type Action struct {
	Type     ActionType
	Loading  bool
	Error    string
	Products []Product
	Total    int
	Product  Product
	ID       int64
}

func SetLoading(v bool) Action             { return Action{Type: ActionSetLoading, Loading: v} }
func SetError(msg string) Action           { return Action{Type: ActionSetError, Error: msg} }
func SetProducts(list []Product) Action    { return Action{Type: ActionSetProducts, Products: list} }
func SetTotal(n int) Action                { return Action{Type: ActionSetTotal, Total: n} }
func AddProductAction(p Product) Action    { return Action{Type: ActionAddProduct, Product: p} }
func UpdateProductAction(p Product) Action { return Action{Type: ActionUpdateProduct, Product: p} }
func DeleteProductAction(id int64) Action  { return Action{Type: ActionDeleteProduct, ID: id} }

// Reduce never mutates st; unknown action types return st unchanged.
func Reduce(st State, a Action) State {
	switch a.Type {
	case ActionSetLoading:
		st.Loading = a.Loading

	case ActionSetError:
		st.Error = a.Error
		st.Loading = false

	case ActionSetProducts:
		st.Products = cloneProducts(a.Products)
		st.Loading = false
		st.Error = ""

	case ActionSetTotal:
		st.Total = a.Total

	case ActionAddProduct:
		list := make([]Product, 0, len(st.Products)+1)
		list = append(list, a.Product)
		st.Products = append(list, st.Products...)
		st.Total++
		st.Loading = false

	case ActionUpdateProduct:
		list := cloneProducts(st.Products)
		if i := indexOf(list, a.Product.ID); i >= 0 {
			list[i] = a.Product
		}
		st.Products = list
		st.Loading = false

	case ActionDeleteProduct:
		list := make([]Product, 0, len(st.Products))
		for _, p := range st.Products {
			if p.ID != a.ID {
				list = append(list, p)
			}
		}
		st.Products = list
		if st.Total > 0 {
			st.Total--
		}
		st.Loading = false
	}
	return st
}

func cloneProducts(in []Product) []Product {
	out := make([]Product, len(in))
	copy(out, in)
	return out
}
