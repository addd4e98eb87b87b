package model

// AccessPhase : состояние доступа пары (документ, пользователь), выводится из сохранённых записей
type AccessPhase string

const (
	PhaseUnauthenticated  AccessPhase = "unauthenticated"
	PhaseAuthenticated    AccessPhase = "authenticated"
	PhasePaymentPending   AccessPhase = "payment_pending"
	PhasePaymentConfirmed AccessPhase = "payment_confirmed"
	PhaseCapabilityIssued AccessPhase = "capability_issued"
	PhaseConsumed         AccessPhase = "consumed"
	PhaseExpired          AccessPhase = "expired"
)

// AccessBasis : на каком основании пользователю можно выдать токен
type AccessBasis string

const (
	BasisNone    AccessBasis = "none"
	BasisPayment AccessBasis = "payment"
	BasisOwner   AccessBasis = "owner"
	BasisGrant   AccessBasis = "grant"
	BasisFree    AccessBasis = "free"
	BasisAdmin   AccessBasis = "admin"
)

// AccessState : результат проверки оплаты, NoAccess или Confirmed с записью платежа
type AccessState struct {
	Confirmed bool
	Payment   *PaymentRecord
}

func NoAccess() AccessState {
	return AccessState{}
}

func ConfirmedAccess(record *PaymentRecord) AccessState {
	return AccessState{Confirmed: true, Payment: record}
}

type AccessView struct {
	DocumentID   string            `json:"document_id"`
	IdentityUUID string            `json:"identity_uuid"`
	Phase        AccessPhase       `json:"phase"`
	Basis        AccessBasis       `json:"basis"`
	Payment      *PaymentRecord    `json:"payment,omitempty"`
	Capability   *AccessCapability `json:"capability,omitempty"`
}
