package accessor

import (
	"github.com/conduit-lang/harmony/internal/core/condition"
	"github.com/conduit-lang/harmony/internal/core/schema"
)

// interceptor stores raw values after nullability, pre-validation and type
// contract checks.
type interceptor struct {
	ts       *schema.TypeSchema
	property string
}

// Intercept builds the validated accessor of a plain property
func Intercept(ts *schema.TypeSchema, property string) Accessor {
	return &interceptor{ts: ts, property: property}
}

func (a *interceptor) Name() string {
	return a.property
}

// Get returns the backing value unchanged
func (a *interceptor) Get(inst *Instance) (any, error) {
	v, _ := inst.load(a.property)
	return v, nil
}

// Set validates value and stores it. Suppressible hook rejections are
// logged and leave the slot untouched without returning an error.
func (a *interceptor) Set(inst *Instance, value any) error {
	if absent(value) {
		if a.ts.Nullable(a.property) {
			inst.store(a.property, nil)
			return nil
		}
		return condition.Void(a.ts.Name(), a.property)
	}

	res := a.check(inst, value)
	if res.IsAccepted() {
		inst.store(a.property, res.Value())
		return nil
	}
	return inst.settle(res)
}

func (a *interceptor) check(inst *Instance, value any) condition.Result {
	hook := a.ts.Hook(a.property)
	if hook == nil {
		hook = ownerHook(inst.owner, a.property)
	}
	if hook != nil {
		if err := hook(value); err != nil {
			return condition.Rejected(condition.From(err).At(a.ts.Name(), a.property))
		}
	}

	contract := a.ts.Contract(a.property)
	if contract == nil || contract.Accepts(value) {
		return condition.Accepted(value)
	}

	built, err := contract.Construct(value)
	if err != nil {
		return condition.Rejected(condition.TypeValidation(a.ts.Name(), a.property, value, err))
	}
	return condition.Accepted(built)
}
