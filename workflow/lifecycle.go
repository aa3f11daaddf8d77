package workflow

// Status represents the stage of a dossier within its lifecycle
type Status string

const (
	StatusDraft                      Status = "DRAFT"
	StatusDossierComplete            Status = "DOSSIER_COMPLETE"
	StatusTechnicalReview            Status = "TECHNICAL_REVIEW"
	StatusWorksRequired              Status = "WORKS_REQUIRED"
	StatusWorksValidated             Status = "WORKS_VALIDATED"
	StatusContractSent               Status = "CONTRACT_SENT"
	StatusContractSigned             Status = "CONTRACT_SIGNED"
	StatusMeterScheduled             Status = "METER_SCHEDULED"
	StatusMeterInstalled             Status = "METER_INSTALLED"
	StatusInstallationReportReceived Status = "INSTALLATION_REPORT_RECEIVED"
	StatusCustomerValidated          Status = "CUSTOMER_VALIDATED"
	StatusSubscriptionActive         Status = "SUBSCRIPTION_ACTIVE"
	StatusRejected                   Status = "REJECTED"
	StatusCancelled                  Status = "CANCELLED"
)

// LinearStatuses is the ordered sequence a dossier normally progresses
// through. REJECTED and CANCELLED sit outside this sequence; they are
// reachable from any non-terminal status.
var LinearStatuses = []Status{
	StatusDraft,
	StatusDossierComplete,
	StatusTechnicalReview,
	StatusWorksRequired,
	StatusWorksValidated,
	StatusContractSent,
	StatusContractSigned,
	StatusMeterScheduled,
	StatusMeterInstalled,
	StatusInstallationReportReceived,
	StatusCustomerValidated,
	StatusSubscriptionActive,
}

// Category is the visual grouping used by status badges
type Category string

const (
	CategoryDraft    Category = "draft"
	CategoryPending  Category = "pending"
	CategoryReview   Category = "review"
	CategoryWorks    Category = "works"
	CategoryContract Category = "contract"
	CategoryActive   Category = "active"
	CategoryRejected Category = "rejected"
)

var statusLabels = map[Status]string{
	StatusDraft:                      "Brouillon",
	StatusDossierComplete:            "Dossier complet",
	StatusTechnicalReview:            "Étude technique",
	StatusWorksRequired:              "Travaux requis",
	StatusWorksValidated:             "Travaux validés",
	StatusContractSent:               "Contrat envoyé",
	StatusContractSigned:             "Contrat signé",
	StatusMeterScheduled:             "Installation planifiée",
	StatusMeterInstalled:             "Compteur installé",
	StatusInstallationReportReceived: "PV reçu",
	StatusCustomerValidated:          "Client validé",
	StatusSubscriptionActive:         "Abonnement actif",
	StatusRejected:                   "Rejeté",
	StatusCancelled:                  "Annulé",
}

var statusCategories = map[Status]Category{
	StatusDraft:                      CategoryDraft,
	StatusDossierComplete:            CategoryPending,
	StatusTechnicalReview:            CategoryReview,
	StatusWorksRequired:              CategoryWorks,
	StatusWorksValidated:             CategoryWorks,
	StatusContractSent:               CategoryContract,
	StatusContractSigned:             CategoryContract,
	StatusMeterScheduled:             CategoryPending,
	StatusMeterInstalled:             CategoryPending,
	StatusInstallationReportReceived: CategoryPending,
	StatusCustomerValidated:          CategoryPending,
	StatusSubscriptionActive:         CategoryActive,
	StatusRejected:                   CategoryRejected,
	StatusCancelled:                  CategoryRejected,
}

// linearIndex maps each linear status to its position, built once at init
var linearIndex = func() map[Status]int {
	m := make(map[Status]int, len(LinearStatuses))
	for i, s := range LinearStatuses {
		m[s] = i
	}
	return m
}()

// IsValid reports whether s is one of the 14 lifecycle statuses
func IsValid(s Status) bool {
	_, ok := statusLabels[s]
	return ok
}

// IsTerminal reports whether s is an absorbing status. Terminal dossiers
// are never offered a guided next step.
func IsTerminal(s Status) bool {
	return s == StatusRejected || s == StatusCancelled
}

// IndexOf returns the position of s in the linear sequence, or -1 for the
// two terminal statuses and for unknown values.
func IndexOf(s Status) int {
	if i, ok := linearIndex[s]; ok {
		return i
	}
	return -1
}

// NextOf returns the status immediately following s in the linear sequence.
// The second return value is false when s is terminal, unknown, or the last
// linear status.
func NextOf(s Status) (Status, bool) {
	i := IndexOf(s)
	if i < 0 || i >= len(LinearStatuses)-1 {
		return "", false
	}
	return LinearStatuses[i+1], true
}

// Label returns the display label for s. Every lifecycle status has a
// label; the empty string only appears for values outside the enumeration.
func Label(s Status) string {
	return statusLabels[s]
}

// CategoryOf returns the badge category for s.
func CategoryOf(s Status) Category {
	return statusCategories[s]
}

// Progress returns how far along the linear sequence s is, in [0,1].
// Terminal statuses report 0 since they carry no linear position.
func Progress(s Status) float64 {
	i := IndexOf(s)
	if i < 0 {
		return 0
	}
	return float64(i) / float64(len(LinearStatuses)-1)
}
