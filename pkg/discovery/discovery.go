// Package discovery orchestrates repository registration at startup: it
// receives scan results, classifies each candidate, resolves its
// descriptor, detects duplicates, and publishes either a facade binding
// (concrete access objects) or a proxy binding (user-declared repository
// interfaces) into the hosting registry.
//
// Registration is two-pass: all facades first, then all proxies, so
// interface candidates never depend on scan order.
package discovery

import (
	"path"
	"reflect"
	"strings"
	"unicode"

	"github.com/rs/zerolog"

	"github.com/repobind/repobind/pkg/errors"
	"github.com/repobind/repobind/pkg/introspect"
	"github.com/repobind/repobind/pkg/logging"
	"github.com/repobind/repobind/pkg/proxy"
	"github.com/repobind/repobind/pkg/registry"
	"github.com/repobind/repobind/pkg/sequence"
	"github.com/repobind/repobind/pkg/types"
)

// Scanner supplies discovery candidates. The scanning algorithm itself is
// an external capability; this subsystem only consumes its results.
type Scanner interface {
	Scan() ([]types.Candidate, error)
}

// StaticScanner serves a fixed candidate list, the usual shape of scan
// results handed over by the hosting container.
type StaticScanner struct {
	candidates []types.Candidate
}

// NewStaticScanner creates a scanner over the given candidates.
func NewStaticScanner(candidates ...types.Candidate) *StaticScanner {
	return &StaticScanner{candidates: candidates}
}

// Scan implements Scanner.
func (s *StaticScanner) Scan() ([]types.Candidate, error) {
	return s.candidates, nil
}

// Options is the discovery configuration bundle.
type Options struct {
	// Enabled gates the whole mechanism; a disabled registrar runs no
	// pass and registers nothing.
	Enabled bool

	// Proxies gates interface-proxy support. When disabled, interface
	// candidates are skipped.
	Proxies bool

	// Packages restricts candidates to types whose package path starts
	// with one of these prefixes. Empty means no restriction.
	Packages []string

	// Exclude skips candidates whose short type name matches one of
	// these patterns (path.Match syntax).
	Exclude []string

	// Sequences is handed to every facade built during the pass.
	Sequences *sequence.Registry

	// Tx is the transaction boundary handed to every facade.
	Tx types.TxManager
}

// Outcome is the terminal state of one candidate in a pass.
type Outcome string

const (
	OutcomeRegistered Outcome = "registered"
	OutcomeSkipped    Outcome = "skipped"
)

// Entry records one candidate's outcome.
type Entry struct {
	Name    string
	Type    string
	Role    types.Role
	Outcome Outcome
	Reason  string
}

// Report summarizes a discovery pass.
type Report struct {
	Registered int
	Skipped    int
	Entries    []Entry
}

// facadeBinding is the per-access-object state kept for proxy matching.
type facadeBinding struct {
	name     string
	desc     types.Descriptor
	instance any
}

// Registrar runs discovery passes against one bean registry. A pass is
// single-threaded and runs once at startup; the published bindings are
// immutable afterwards.
type Registrar struct {
	opts    Options
	beans   registry.Beans
	logger  zerolog.Logger
	facades []facadeBinding
}

// NewRegistrar creates a registrar publishing into beans.
func NewRegistrar(opts Options, beans registry.Beans) *Registrar {
	return &Registrar{
		opts:   opts,
		beans:  beans,
		logger: logging.GetLogger("discovery"),
	}
}

// Run executes one discovery pass. Per-candidate failures are logged and
// skipped, never fatal to the pass; only a failing scanner aborts.
func (r *Registrar) Run(scanner Scanner) (*Report, error) {
	report := &Report{}

	if !r.opts.Enabled {
		r.logger.Info().Msg("Repository discovery is disabled")
		return report, nil
	}

	done := logging.LogOperationStart(r.logger, "discovery pass")
	defer done()

	candidates, err := scanner.Scan()
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCandidateInvalid, "candidate scan failed")
	}

	var interfaces []types.Candidate
	for _, c := range candidates {
		if !r.inScope(c.Type) {
			r.skip(report, c, types.RoleNone, "", "excluded by scan configuration")
			continue
		}

		switch Classify(c.Type) {
		case types.RoleAccessObject:
			r.registerFacade(report, c)
		case types.RoleInterface:
			interfaces = append(interfaces, c)
		default:
			r.skip(report, c, types.RoleNone, "", "neither access object nor repository interface")
		}
	}

	// second pass: every facade exists before any proxy is resolved
	for _, c := range interfaces {
		if !r.opts.Proxies {
			r.skip(report, c, types.RoleInterface, "", "interface-proxy support is disabled")
			continue
		}
		r.registerProxy(report, c)
	}

	r.logger.Info().
		Int("registered", report.Registered).
		Int("skipped", report.Skipped).
		Msg("Discovery pass completed")
	return report, nil
}

func (r *Registrar) registerFacade(report *Report, c types.Candidate) {
	desc, err := introspect.ResolveAccessObject(c.Type)
	if err != nil {
		r.logger.Warn().Str("candidate", typeString(c.Type)).Err(err).Msg("Skipping access object, type resolution failed")
		r.skip(report, c, types.RoleAccessObject, "", err.Error())
		return
	}

	name := RegistrationName(c.Type, types.RoleAccessObject)
	if r.beans.Has(name) {
		err := errors.Newf(errors.ErrDuplicateRegistration, "binding '%s' already registered, first registration wins", name)
		r.logger.Warn().Str("candidate", typeString(c.Type)).Str("name", name).Msg("Skipping duplicate access object")
		r.skip(report, c, types.RoleAccessObject, name, err.Error())
		return
	}

	if c.Build == nil {
		err := errors.Newf(errors.ErrCandidateInvalid, "access object %s has no facade builder", typeString(c.Type))
		r.logger.Warn().Str("candidate", typeString(c.Type)).Msg("Skipping access object without facade builder")
		r.skip(report, c, types.RoleAccessObject, name, err.Error())
		return
	}

	instance := c.Build(types.FacadeDeps{Sequences: r.opts.Sequences, Tx: r.opts.Tx})
	if err := r.beans.Register(name, instance); err != nil {
		r.logger.Warn().Str("name", name).Err(err).Msg("Skipping access object, registration rejected")
		r.skip(report, c, types.RoleAccessObject, name, err.Error())
		return
	}

	r.facades = append(r.facades, facadeBinding{name: name, desc: desc, instance: instance})
	r.logger.Debug().Str("name", name).Stringer("descriptor", desc).Msg("Registered facade binding")
	report.Registered++
	report.Entries = append(report.Entries, Entry{
		Name: name, Type: typeString(c.Type), Role: types.RoleAccessObject, Outcome: OutcomeRegistered,
	})
}

func (r *Registrar) registerProxy(report *Report, c types.Candidate) {
	desc, err := introspect.ResolveInterface(c.Type)
	if err != nil {
		r.logger.Warn().Str("candidate", typeString(c.Type)).Err(err).Msg("Skipping interface, type resolution failed")
		r.skip(report, c, types.RoleInterface, "", err.Error())
		return
	}

	name := RegistrationName(c.Type, types.RoleInterface)
	if r.beans.Has(name) {
		err := errors.Newf(errors.ErrDuplicateRegistration, "binding '%s' already registered, first registration wins", name)
		r.logger.Warn().Str("candidate", typeString(c.Type)).Str("name", name).Msg("Skipping duplicate interface")
		r.skip(report, c, types.RoleInterface, name, err.Error())
		return
	}

	binding, ok := r.matchFacade(desc)
	if !ok {
		err := errors.Newf(errors.ErrFacadeUnmatched, "no facade binding matches %s", desc)
		r.logger.Warn().Str("candidate", typeString(c.Type)).Stringer("descriptor", desc).Msg("Skipping interface, no matching facade")
		r.skip(report, c, types.RoleInterface, name, err.Error())
		return
	}

	handle, err := proxy.Bind(c.Type, binding.instance)
	if err != nil {
		r.logger.Warn().Str("candidate", typeString(c.Type)).Err(err).Msg("Skipping interface, proxy bind failed")
		r.skip(report, c, types.RoleInterface, name, err.Error())
		return
	}

	if err := r.beans.Register(name, handle); err != nil {
		r.logger.Warn().Str("name", name).Err(err).Msg("Skipping interface, registration rejected")
		r.skip(report, c, types.RoleInterface, name, err.Error())
		return
	}

	r.logger.Debug().Str("name", name).Str("facade", binding.name).Msg("Registered proxy binding")
	report.Registered++
	report.Entries = append(report.Entries, Entry{
		Name: name, Type: typeString(c.Type), Role: types.RoleInterface, Outcome: OutcomeRegistered,
	})
}

func (r *Registrar) matchFacade(desc types.Descriptor) (facadeBinding, bool) {
	for _, fb := range r.facades {
		if fb.desc.Matches(desc) {
			return fb, true
		}
	}
	return facadeBinding{}, false
}

func (r *Registrar) skip(report *Report, c types.Candidate, role types.Role, name, reason string) {
	report.Skipped++
	report.Entries = append(report.Entries, Entry{
		Name: name, Type: typeString(c.Type), Role: role, Outcome: OutcomeSkipped, Reason: reason,
	})
}

func (r *Registrar) inScope(t reflect.Type) bool {
	if t == nil {
		return true
	}

	st := t
	for st.Kind() == reflect.Pointer {
		st = st.Elem()
	}

	if len(r.opts.Packages) > 0 {
		matched := false
		for _, prefix := range r.opts.Packages {
			if strings.HasPrefix(st.PkgPath(), prefix) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}

	for _, pattern := range r.opts.Exclude {
		if ok, err := path.Match(pattern, shortName(t)); err == nil && ok {
			return false
		}
	}
	return true
}

// Classify distinguishes access-object implementations from repository
// interfaces. Anything else is skipped, non-fatally.
func Classify(t reflect.Type) types.Role {
	switch {
	case t == nil:
		return types.RoleNone
	case t.Kind() == reflect.Interface:
		return types.RoleInterface
	case introspect.IsAccessObject(t):
		return types.RoleAccessObject
	default:
		return types.RoleNone
	}
}

// RegistrationName derives the deterministic bean name of a candidate
// from its short type name and discovery role: access objects get the
// lowerCamel type name with a Facade suffix, interfaces just the
// lowerCamel type name.
func RegistrationName(t reflect.Type, role types.Role) string {
	name := shortName(t)
	if name == "" {
		return ""
	}

	runes := []rune(name)
	runes[0] = unicode.ToLower(runes[0])
	name = string(runes)

	if role == types.RoleAccessObject {
		name += "Facade"
	}
	return name
}

func shortName(t reflect.Type) string {
	if t == nil {
		return ""
	}
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t.Name()
}

func typeString(t reflect.Type) string {
	if t == nil {
		return "<nil>"
	}
	return t.String()
}
