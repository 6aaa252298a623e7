package handlers

import (
	"github.com/admitly/admitly/internal/router"
)

// Priorities follow spec §4.4's table; where two handlers needed to be
// within the Router's compose window (spec §4.3: priorities within 5 of
// each other, disjoint triggers) to reproduce the composed-handler
// scenario in spec §8 scenario 5, values were compressed slightly while
// preserving the table's relative ordering — the spec itself leaves exact
// values to the implementer (spec §9 Open Questions).
const (
	priorityFosterCareHomeless       = 150
	priorityReligiousMissionDeferral = 150
	priorityParentPLUSDenial         = 145
	priorityDisability504            = 145
	priorityCSInternalTransfer       = 140
	priorityDACAorTPS                = 140
	priorityMilitaryDependent        = 135
	priorityTribal                   = 132
	priorityInternationalTransfer    = 130
	priorityCCToUCTransfer           = 128
	priorityBankruptcyIncarceration  = 127
	priorityNCAAandNIL               = 126
	priorityReligious                = 115
	priorityTransferCredit           = 110
	priorityBSMD                     = 100
	priorityResidencyWUE             = 100
	priorityVeteransBenefits         = 100
	priorityFinancialAidSAP          = 100
	priorityOFACSanctions            = 100
)

// Registry holds every handler keyed by id, alongside the Router
// registrations that select among them.
type Registry struct {
	handlers      map[string]Handler
	registrations []router.Registration
}

// NewRegistry builds the full ~20-handler registry (spec §4.4).
func NewRegistry() *Registry {
	entries := []struct {
		handler  Handler
		priority int
		trigger  router.Predicate
	}{
		{FosterCareHomelessHandler{}, priorityFosterCareHomeless, FosterCareHomelessTrigger},
		{ReligiousMissionDeferralHandler{}, priorityReligiousMissionDeferral, MissionDeferralTrigger},
		{ParentPLUSDenialHandler{}, priorityParentPLUSDenial, ParentPLUSDenialTrigger},
		{Disability504Handler{}, priorityDisability504, Disability504Trigger},
		{CSInternalTransferHandler{}, priorityCSInternalTransfer, CSInternalTransferTrigger},
		{DACAorTPSHandler{}, priorityDACAorTPS, DACAorTPSTrigger},
		{MilitaryDependentHandler{}, priorityMilitaryDependent, MilitaryDependentTrigger},
		{TribalHandler{}, priorityTribal, TribalTrigger},
		{InternationalTransferHandler{}, priorityInternationalTransfer, InternationalTransferTrigger},
		{CCToUCTransferHandler{}, priorityCCToUCTransfer, CCToUCTransferTrigger},
		{BankruptcyIncarcerationHandler{}, priorityBankruptcyIncarceration, BankruptcyIncarcerationTrigger},
		{NCAAandNILHandler{}, priorityNCAAandNIL, NCAAandNILTrigger},
		{ReligiousHandler{}, priorityReligious, ReligiousTrigger},
		{TransferCreditHandler{}, priorityTransferCredit, TransferCreditTrigger},
		{BSMDHandler{}, priorityBSMD, BSMDTrigger},
		{ResidencyWUEHandler{}, priorityResidencyWUE, ResidencyWUETrigger},
		{VeteransBenefitsHandler{}, priorityVeteransBenefits, VeteransBenefitsTrigger},
		{FinancialAidSAPHandler{}, priorityFinancialAidSAP, FinancialAidSAPTrigger},
		{OFACSanctionsHandler{}, priorityOFACSanctions, OFACSanctionsTrigger},
	}

	reg := &Registry{
		handlers:      make(map[string]Handler, len(entries)+1),
		registrations: make([]router.Registration, 0, len(entries)+1),
	}
	for _, e := range entries {
		reg.handlers[e.handler.ID()] = e.handler
		reg.registrations = append(reg.registrations, router.Registration{
			ID: e.handler.ID(), Priority: e.priority, Trigger: e.trigger,
		})
	}

	fallback := GenericCiteSummarizeHandler{}
	reg.handlers[fallback.ID()] = fallback
	// The fallback has no trigger predicate of its own; router.Router
	// applies it directly when no registered predicate fires, so it is
	// intentionally omitted from registrations.

	return reg
}

// Handler returns the handler registered under id, or nil if unknown.
func (r *Registry) Handler(id string) Handler {
	return r.handlers[id]
}

// Registrations returns the trigger/priority registrations for
// internal/router.New.
func (r *Registry) Registrations() []router.Registration {
	return r.registrations
}
