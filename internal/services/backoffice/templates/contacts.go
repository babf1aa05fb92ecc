package templates

// ContactDetailView provides data for the contact detail page.
type ContactDetailView struct {
	ID       string
	Loaded   bool
	Email    string
	Phone    string
	City     string
	Address1 string
	Address2 string
	// Country is shown only when CountryPending is false.
	Country        string
	CountryPending bool
	Confirming     bool
	ConfirmURL     string
	DeleteURL      string
	CancelURL      string
	BackURL        string
	Breadcrumbs    []Breadcrumb
}
