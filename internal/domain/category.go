package domain

// Category labels a complaint by the maintenance crew that handles it.
type Category string

const (
	CategoryElectricity Category = "Electricity"
	CategorySanitation  Category = "Washroom & Sanitation"
	CategoryCarpentry   Category = "Carpentry/Furniture"
	CategoryGeneral     Category = "General"
)

// Well-known assignees shown as the routing target.
const (
	AssigneeElectrician   = "Mr. Sharma (Chief Electrician)"
	AssigneeSanitation    = "Ms. Rani (Sanitation Lead)"
	AssigneeMaintenance   = "Mr. Kumar (Maintenance)"
	AssigneeCampusManager = "Campus Manager"
	AssigneeAdminOffice   = "Admin Office"
)

// Assignment pairs a category with the person it is routed to.
type Assignment struct {
	Category   Category
	AssignedTo string
}
