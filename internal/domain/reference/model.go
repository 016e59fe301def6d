package reference

// Category groups the allowed values of one enumerated field.
type Category string

const (
	CategorySector          Category = "sector"
	CategoryClientStatus    Category = "client_status"
	CategoryInteractionType Category = "interaction_type"
	CategoryJumpStatus      Category = "jump_status"
	CategoryProjectStatus   Category = "project_status"
	CategoryTaskStatus      Category = "task_status"
	CategoryCopilotStatus   Category = "copilot_status"
	CategoryReferralStatus  Category = "referral_status"
	CategoryInvoiceStatus   Category = "invoice_status"
)

// Value is one allowed entry of a reference table.
type Value struct {
	Category  Category `json:"category"`
	Value     string   `json:"value"`
	Label     string   `json:"label"`
	SortOrder int      `json:"sort_order"`
}
