package ports

import "clipkeep/internal/domain"

// ExclusionList decides which source applications are never captured
type ExclusionList interface {
	IsExcluded(appIdentifier string) bool
}

// Confirmer asks the user whether oversized content should be kept.
// Exactly one of onAccept or onReject is eventually called, or neither
// if the request is left pending.
type Confirmer interface {
	RequestLargeContentConfirmation(item domain.PendingItem, onAccept, onReject func())
}

// Notifier surfaces user-visible events
type Notifier interface {
	Notify(event domain.Event)
}
