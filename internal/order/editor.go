package order

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Step names the stages of the commit pipeline, in execution order.
type Step string

const (
	StepValidate          Step = "validate"
	StepPersistHeader     Step = "persist_header"
	StepReconcileStops    Step = "reconcile_route_stops"
	StepReconcileCargo    Step = "reconcile_cargo_items"
	StepReconcileCarriers Step = "reconcile_carrier_costs"
	StepRefetch           Step = "refetch"
)

// ValidationError blocks the commit before any store call is made.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "validation failed: " + strings.Join(e.Problems, "; ")
}

// StepError reports which pipeline step failed and why.
type StepError struct {
	Step Step
	Err  error
}

func (e *StepError) Error() string {
	return fmt.Sprintf("commit step %s failed: %v", e.Step, e.Err)
}

func (e *StepError) Unwrap() error {
	return e.Err
}

// PartialCommitError is a step failure after one or more earlier steps
// already wrote to the store. There is no compensation: the aggregate is left
// mixed, some collections reconciled and some not, and the user is told to
// retry.
type PartialCommitError struct {
	Completed []Step
	Step      Step
	Err       error
}

func (e *PartialCommitError) Error() string {
	return fmt.Sprintf("order partially saved: step %s failed after %d step(s) were applied, please retry: %v",
		e.Step, len(e.Completed), e.Err)
}

func (e *PartialCommitError) Unwrap() error {
	return e.Err
}

// CommitResult carries the canonical aggregate refetched from the store after
// a successful commit, plus any non-fatal warnings gathered along the way.
type CommitResult struct {
	Order    *Order    `json:"order"`
	Warnings []Warning `json:"warnings"`
}

// Editor sequences a full aggregate commit:
//
//	validate -> persist header -> reconcile stops -> reconcile cargo
//	         -> reconcile carrier costs -> refetch canonical
//
// The steps run strictly in order because later ones consume identifiers
// produced by earlier ones. The pipeline is terminal on the first unrecovered
// error.
type Editor struct {
	stores     Stores
	reconciler *Reconciler
}

func NewEditor(stores Stores) *Editor {
	return &Editor{stores: stores, reconciler: NewReconciler(stores)}
}

// Commit reconciles the in-memory aggregate against the store and returns the
// canonical aggregate. The input order is mutated in place (ids, positions,
// derived route summary) but the result's Order is the refetched copy, which
// supersedes it.
func (e *Editor) Commit(ctx context.Context, o *Order) (*CommitResult, error) {
	attemptID, _ := uuid.NewV4()
	logger := log.With().Stringer("commit_id", attemptID).Logger()

	if problems := Validate(o); len(problems) > 0 {
		logger.Warn().Strs("problems", problems).Msg("commit rejected by validation")
		return nil, &ValidationError{Problems: problems}
	}
	warnings := SoftWarnings(o)

	prepare(o)
	DeriveRouteSummary(o)

	var completed []Step
	fail := func(step Step, err error) error {
		logger.Error().Err(err).Str("step", string(step)).Msg("commit step failed")
		if len(completed) > 0 {
			return &PartialCommitError{Completed: completed, Step: step, Err: err}
		}
		return &StepError{Step: step, Err: err}
	}

	if o.ID == 0 {
		if o.Status == "" {
			o.Status = StatusNew
		}
		id, err := e.stores.Orders.Create(ctx, o)
		if err != nil {
			return nil, fail(StepPersistHeader, err)
		}
		o.ID = id
	} else {
		if err := e.stores.Orders.Update(ctx, o); err != nil {
			return nil, fail(StepPersistHeader, err)
		}
	}
	completed = append(completed, StepPersistHeader)
	logger = logger.With().Int64("order_id", o.ID).Logger()

	stopRemap, w, err := e.reconciler.ReconcileStops(ctx, o.ID, o.RouteStops)
	warnings = append(warnings, w...)
	if err != nil {
		return nil, fail(StepReconcileStops, err)
	}
	completed = append(completed, StepReconcileStops)

	_, w, err = e.reconciler.ReconcileCargo(ctx, o.ID, o.CargoItems, stopRemap)
	warnings = append(warnings, w...)
	if err != nil {
		return nil, fail(StepReconcileCargo, err)
	}
	completed = append(completed, StepReconcileCargo)

	_, w, err = e.reconciler.ReconcileCarrierCosts(ctx, o.ID, o.CarrierCosts)
	warnings = append(warnings, w...)
	if err != nil {
		return nil, fail(StepReconcileCarriers, err)
	}
	completed = append(completed, StepReconcileCarriers)

	canonical, err := e.stores.Orders.GetByID(ctx, o.ID)
	if err != nil {
		return nil, fail(StepRefetch, err)
	}

	logger.Info().Int("warnings", len(warnings)).Msg("order committed")
	return &CommitResult{Order: canonical, Warnings: warnings}, nil
}

// prepare assigns local ids to rows the client sent with a zero id, so the
// reconciler sees exactly two id classes: real (positive) and local
// (negative).
func prepare(o *Order) {
	alloc := NewLocalIDAllocator()
	for i := range o.RouteStops {
		if o.RouteStops[i].ID == 0 {
			o.RouteStops[i].ID = alloc.Next()
		}
	}
	for i := range o.CargoItems {
		if o.CargoItems[i].ID == 0 {
			o.CargoItems[i].ID = alloc.Next()
		}
	}
	for i := range o.CarrierCosts {
		if o.CarrierCosts[i].ID == 0 {
			o.CarrierCosts[i].ID = alloc.Next()
		}
	}
	for i := range o.RouteStops {
		o.RouteStops[i].Position = i
	}
	for i := range o.CargoItems {
		o.CargoItems[i].Position = i
	}
}

// Validate returns the hard validation problems that block a commit. No store
// call is made when any problem is found.
func Validate(o *Order) []string {
	var problems []string
	if o.ClientID == 0 {
		problems = append(problems, ErrClientRequired.Error())
	}
	if !o.RouteExempt {
		var hasLoading, hasUnloading bool
		for _, s := range o.RouteStops {
			switch s.Kind {
			case StopLoading:
				hasLoading = true
			case StopUnloading:
				hasUnloading = true
			}
		}
		if !hasLoading || !hasUnloading {
			problems = append(problems, ErrStopsRequired.Error())
		}
		for _, s := range o.RouteStops {
			if s.Country == "" {
				problems = append(problems, ErrCountryRequired.Error())
				break
			}
		}
	}
	return problems
}

// SoftWarnings returns the non-blocking findings surfaced alongside a commit.
func SoftWarnings(o *Order) []Warning {
	var warnings []Warning

	var firstLoading, lastUnloading *RouteStop
	for i := range o.RouteStops {
		s := &o.RouteStops[i]
		switch s.Kind {
		case StopLoading:
			if firstLoading == nil || s.Position < firstLoading.Position {
				firstLoading = s
			}
		case StopUnloading:
			if lastUnloading == nil || s.Position > lastUnloading.Position {
				lastUnloading = s
			}
		}
	}
	if firstLoading != nil && lastUnloading != nil &&
		firstLoading.DateFrom != nil && lastUnloading.DateTo != nil &&
		firstLoading.DateFrom.After(*lastUnloading.DateTo) {
		warnings = append(warnings, Warning{
			Code:    WarnRouteDates,
			Message: "first loading date is after last unloading date",
		})
	}

	if carrierTotal := TotalCarrierCost(o); o.ClientPriceNet.LessThan(carrierTotal) {
		warnings = append(warnings, Warning{
			Code: WarnPriceBelowCost,
			Message: fmt.Sprintf("client price %s is below total carrier cost %s",
				o.ClientPriceNet.StringFixed(2), carrierTotal.StringFixed(2)),
		})
	}

	if o.VATRate.IsNegative() || o.VATRate.GreaterThan(decimal.NewFromInt(100)) {
		warnings = append(warnings, Warning{
			Code:    WarnVATRateOutOfBand,
			Message: fmt.Sprintf("vat rate %s is outside 0-100", o.VATRate.String()),
		})
	}

	return warnings
}

// IsValidation reports whether err is a blocking validation failure.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPartialCommit reports whether err left the aggregate in a mixed state.
func IsPartialCommit(err error) bool {
	var pe *PartialCommitError
	return errors.As(err, &pe)
}
