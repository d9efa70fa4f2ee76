package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/yigit/registrar/internal/pkg/admission"
	"github.com/yigit/registrar/internal/pkg/apperrors"
	"github.com/yigit/registrar/internal/pkg/helpers"
	"github.com/yigit/registrar/internal/pkg/metrics"
)

// Default timeouts used when Options leaves them zero.
const (
	DefaultStoreTimeout     = 5 * time.Second
	DefaultAdmissionTimeout = 10 * time.Second
)

// Options configures the services.
type Options struct {
	StoreTimeout     time.Duration
	AdmissionTimeout time.Duration
	// CycleDetection adds the transitive cycle check to prerequisite inserts.
	CycleDetection bool
	Now            func() time.Time
	Logger         zerolog.Logger
	Metrics        *metrics.Metrics
}

func (o *Options) setDefaults() {
	if o.StoreTimeout <= 0 {
		o.StoreTimeout = DefaultStoreTimeout
	}
	if o.AdmissionTimeout <= 0 {
		o.AdmissionTimeout = DefaultAdmissionTimeout
	}
	if o.Now == nil {
		o.Now = time.Now
	}
}

// Services holds all the service instances
type Services struct {
	Catalog       *CatalogService
	Prerequisites *PrerequisiteService
	Terms         *TermService
	Offerings     *OfferingService
	Registrations *RegistrationService
	Identity      IdentityService
}

// NewServices wires every service over stores.
func NewServices(stores Stores, hasher PasswordHasher, tokens TokenIssuer, opts Options) *Services {
	opts.setDefaults()

	rules := DefaultEdgeRules()
	if opts.CycleDetection {
		rules = append(rules, RejectCycles(stores.Prerequisites))
	}

	return &Services{
		Catalog:       NewCatalogService(stores.Departments, stores.Courses, opts),
		Prerequisites: NewPrerequisiteService(stores.Prerequisites, stores.Courses, rules, opts),
		Terms:         NewTermService(stores.Terms, opts),
		Offerings:     NewOfferingService(stores.Offerings, stores.Meetings, stores.Registrations, opts),
		Registrations: NewRegistrationService(RegistrationDeps{
			Registrations: stores.Registrations,
			Offerings:     stores.Offerings,
			Terms:         stores.Terms,
			Users:         stores.Users,
			Prerequisites: stores.Prerequisites,
			Gate:          admission.NewGate(),
		}, opts),
		Identity: NewIdentityService(stores.Users, stores.Students, hasher, tokens, opts),
	}
}

// storeContext bounds a single store call by the configured timeout.
func storeContext(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return helpers.WithDefaultTimeout(ctx, timeout)
}

// logFailure records err at debug level for expected domain failures and at
// error level for everything else.
func logFailure(logger zerolog.Logger, err error) *zerolog.Event {
	if apperrors.Is(err, apperrors.ErrValidation,
		apperrors.ErrNotFound,
		apperrors.ErrDuplicate,
		apperrors.ErrEligibility,
		apperrors.ErrCapacityExceeded,
		apperrors.ErrInvalidState,
		apperrors.ErrAuthentication,
	) {
		return logger.Debug().Err(err)
	}
	return logger.Error().Err(err)
}
