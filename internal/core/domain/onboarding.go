package domain

import "fmt"

// OnboardingStage is where a merchant stands between sign-up and approval
type OnboardingStage string

const (
	StageNoAccount             OnboardingStage = "no_account"
	StageAccountCreated        OnboardingStage = "account_created"
	StageStoreInfoSubmitted    OnboardingStage = "store_info_submitted"
	StageVerificationSubmitted OnboardingStage = "verification_submitted"
	StageApproved              OnboardingStage = "approved"
	// StageDeleted is reached by rejection; the account and store no longer exist.
	StageDeleted OnboardingStage = "deleted"
)

// OnboardingEvent is an action that moves a merchant between stages
type OnboardingEvent string

const (
	EventCreateAccount      OnboardingEvent = "create_account"
	EventSubmitStoreInfo    OnboardingEvent = "submit_store_info"
	EventSubmitVerification OnboardingEvent = "submit_verification"
	EventApprove            OnboardingEvent = "approve"
	EventReject             OnboardingEvent = "reject"
)

type transitionKey struct {
	From  OnboardingStage
	Event OnboardingEvent
}

var onboardingTransitions = map[transitionKey]OnboardingStage{
	{StageNoAccount, EventCreateAccount}:                  StageAccountCreated,
	{StageAccountCreated, EventSubmitStoreInfo}:           StageStoreInfoSubmitted,
	{StageStoreInfoSubmitted, EventSubmitVerification}:    StageVerificationSubmitted,
	{StageVerificationSubmitted, EventSubmitVerification}: StageVerificationSubmitted,
	// admins may review a store whose documents are still missing
	{StageStoreInfoSubmitted, EventApprove}:    StageApproved,
	{StageStoreInfoSubmitted, EventReject}:     StageDeleted,
	{StageVerificationSubmitted, EventApprove}: StageApproved,
	{StageVerificationSubmitted, EventReject}:  StageDeleted,
}

// NextStage returns the stage reached by applying event to from
func NextStage(from OnboardingStage, event OnboardingEvent) (OnboardingStage, error) {
	to, ok := onboardingTransitions[transitionKey{from, event}]
	if !ok {
		return from, fmt.Errorf("invalid onboarding transition: %s does not accept %s", from, event)
	}
	return to, nil
}

// CanTransition reports whether event is legal in stage from
func CanTransition(from OnboardingStage, event OnboardingEvent) bool {
	_, ok := onboardingTransitions[transitionKey{from, event}]
	return ok
}

// StoreSnapshot is the subset of store state the stage is derived from
type StoreSnapshot struct {
	BankAccountNumber string
	ApprovalStatus    ApprovalStatus
}

// StageFor derives the stage of an existing merchant from its store row.
// A nil store means step 2 has not happened yet.
func StageFor(store *StoreSnapshot) OnboardingStage {
	switch {
	case store == nil:
		return StageAccountCreated
	case store.ApprovalStatus == ApprovalApproved:
		return StageApproved
	case store.BankAccountNumber != "":
		return StageVerificationSubmitted
	default:
		return StageStoreInfoSubmitted
	}
}

// PendingAdminReview reports whether the store is waiting on an admin
func (s OnboardingStage) PendingAdminReview() bool {
	return s == StageVerificationSubmitted
}
