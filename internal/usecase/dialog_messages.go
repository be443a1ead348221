package usecase

import "github.com/nguyentranbao-ct/smart-cart/pkg/tmplx"

type messageData struct {
	Name     string
	Query    string
	Source   string
	Price    float64
	Quantity int
	Count    int
}

var (
	msgAdded = tmplx.MustParse("added",
		`Added {{ if gt .Quantity 1 }}{{ .Quantity }} x {{ end }}'{{ .Name }}' to your cart.`)
	msgConfirm = tmplx.MustParse("confirm",
		`I found '{{ .Name }}' for ₹{{ money .Price }} on {{ .Source }}. Should I add it to your cart?`)
	msgSelect = tmplx.MustParse("select",
		`Please select which product to add to your cart ({{ .Count }} {{ plural .Count "option" "options" }}):`)
	msgResults = tmplx.MustParse("results",
		`Here are the results for '{{ .Query }}':`)
	msgNoResults = tmplx.MustParse("no_results",
		`No products found for '{{ .Query }}'.`)
	msgInvalidSelection = tmplx.MustParse("invalid_selection",
		`Invalid product selection.{{ if gt .Count 0 }} Please choose a number between 1 and {{ .Count }}.{{ end }}`)
)

const (
	msgDeclined      = "Okay, nothing was added to your cart."
	msgLostTrack     = "I couldn't tell which product you meant. Please tell me what to add."
	msgNotUnderstood = "Sorry, I couldn't understand which product you want. Please try rephrasing your request."
	msgError         = "Sorry, something went wrong. Please try again."
)
