package interproc

import (
	"fmt"

	"github.com/gala-analyzer/gala/analysis/cfg"
	"github.com/gala-analyzer/gala/analysis/state"
	"github.com/gala-analyzer/gala/analysis/symbolic"
	"github.com/gala-analyzer/gala/config"
	"github.com/gala-analyzer/gala/types"
)

// OpenCallError is returned by the fail policy when a call into
// unanalyzed code is reached.
type OpenCallError struct {
	Call *cfg.OpenCall
}

func (e *OpenCallError) Error() string {
	return fmt.Sprintf("open call to %s at %s", e.Call.Callee(), e.Call.Location())
}

// OpenCallPolicy approximates the effect of a call into code outside the
// analyzed program. It is the single integration point for assumptions
// about such code; implementations are interchangeable.
type OpenCallPolicy interface {
	// Apply computes the state after the open call.
	Apply(call *cfg.OpenCall, pre state.AnalysisState) (state.AnalysisState, error)

	fmt.Stringer
}

// FailPolicy aborts the whole analysis on any open call.
type FailPolicy struct{}

func (FailPolicy) Apply(call *cfg.OpenCall, pre state.AnalysisState) (state.AnalysisState, error) {
	return pre, &OpenCallError{Call: call}
}

func (FailPolicy) String() string { return config.OpenCallFail }

// TopPolicy models the result of an open call as a completely unknown
// value of the declared return type and leaves the rest of the state
// intact.
type TopPolicy struct{}

func (TopPolicy) Apply(call *cfg.OpenCall, pre state.AnalysisState) (state.AnalysisState, error) {
	return bindUnknownResult(call, pre)
}

func (TopPolicy) String() string { return config.OpenCallTop }

// HavocPolicy models the result like TopPolicy and additionally rebinds
// every variable passed as an argument to an unknown value of its
// declared type, since the callee may mutate it.
type HavocPolicy struct{}

func (HavocPolicy) Apply(call *cfg.OpenCall, pre state.AnalysisState) (state.AnalysisState, error) {
	post := pre
	for _, arg := range call.Args() {
		v, ok := arg.(*symbolic.Variable)
		if !ok {
			continue
		}
		var err error
		post, err = post.Assign(v, symbolic.NewPushAny(v.StaticType(), call.Location()))
		if err != nil {
			return pre, err
		}
	}
	return bindUnknownResult(call, post)
}

func (HavocPolicy) String() string { return config.OpenCallHavoc }

// PolicyFromConfig maps a configured policy name to its implementation.
func PolicyFromConfig(name string) (OpenCallPolicy, error) {
	switch name {
	case config.OpenCallFail:
		return FailPolicy{}, nil
	case config.OpenCallTop:
		return TopPolicy{}, nil
	case config.OpenCallHavoc:
		return HavocPolicy{}, nil
	default:
		return nil, fmt.Errorf("unknown open call policy %q", name)
	}
}

// bindUnknownResult binds the call's target variable to the most general
// abstraction of the declared return type's instances. Calls without a
// target leave the state untouched.
func bindUnknownResult(call *cfg.OpenCall, pre state.AnalysisState) (state.AnalysisState, error) {
	target := call.Target()
	if target == nil {
		return pre, nil
	}
	ret := call.ReturnType()
	if ret == nil {
		ret = target.StaticType()
	}
	return bindResultOf(target, symbolic.NewPushAny(ret, call.Location()), pre)
}

// bindResultOf evaluates the result expression in pre and binds it to
// the target variable, registering synthetic targets for later purging.
func bindResultOf(target *symbolic.Variable, result symbolic.Expression, pre state.AnalysisState) (state.AnalysisState, error) {
	val, err := pre.EvalValue(result)
	if err != nil {
		return pre, err
	}
	typ, err := pre.EvalTypes(result)
	if err != nil {
		return pre, err
	}
	post, err := pre.Bind(target, val, typ)
	if err != nil {
		return pre, err
	}
	if target.IsMeta() {
		post = post.AddMeta(target)
	}
	return post, nil
}

// openReturnType guesses the declared return type of a call without a
// resolvable target: the target variable's static type when there is
// one, the untyped type otherwise.
func openReturnType(call *cfg.UnresolvedCall, u *types.Universe) *types.Type {
	if t := call.Target(); t != nil {
		return t.StaticType()
	}
	return u.Untyped()
}
