package handlers

import (
	"time"

	"care4-server/internal/forms"
	"care4-server/internal/inflight"
	"care4-server/internal/services"
	"care4-server/internal/utils"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// IdempotencyHeader names the header that guards one-shot submissions.
const IdempotencyHeader = "Idempotency-Key"

// FormRunner drives the form controller for endpoints that submit a whole
// form in one request.
type FormRunner struct {
	Pipeline *services.Pipeline
	Resolver *forms.Resolver
	Guard    inflight.Guard
	LockTTL  time.Duration
	Log      zerolog.Logger
}

// Open resolves a form and builds its controller and submit function.
func (r *FormRunner) Open(family, typ string, sc services.SubmitContext, seed map[string]any) (*forms.Controller, forms.SubmitFunc, error) {
	schema, err := r.Resolver.Resolve(family, typ)
	if err != nil {
		return nil, nil, err
	}
	submit, err := r.Pipeline.Submitter(family, typ, sc)
	if err != nil {
		return nil, nil, err
	}
	ctrl := forms.NewController(schema, r.Resolver.Registry(),
		forms.WithLogger(r.Log),
		forms.WithSeed(seed),
	)
	return ctrl, submit, nil
}

// Submit fills a fresh form with values and submits it, writing the
// response. Values for fields the form does not have are ignored.
func (r *FormRunner) Submit(c *gin.Context, message, family, typ string, sc services.SubmitContext, seed, values map[string]any) {
	if key := c.GetHeader(IdempotencyHeader); key != "" {
		lockKey := family + ":" + typ + ":" + key
		acquired, err := r.Guard.Acquire(c.Request.Context(), lockKey, r.LockTTL)
		if err != nil {
			r.Log.Error().Err(err).Msg("in-flight guard unavailable")
			utils.BadGateway(c, "Submission guard unavailable, please retry")
			return
		}
		if !acquired {
			respondError(c, forms.ErrSubmitInProgress)
			return
		}
		defer func() {
			if err := r.Guard.Release(c.Request.Context(), lockKey); err != nil {
				r.Log.Warn().Err(err).Str("key", lockKey).Msg("failed to release in-flight guard")
			}
		}()
	}

	ctrl, submit, err := r.Open(family, typ, sc, seed)
	if err != nil {
		respondError(c, err)
		return
	}
	for _, d := range ctrl.Schema().Fields {
		v, ok := values[d.Name]
		if !ok {
			continue
		}
		if _, isUpload := v.(*forms.Upload); d.File && !isUpload {
			continue
		}
		if err := ctrl.Change(d.Name, v); err != nil {
			respondError(c, err)
			return
		}
	}

	out, err := ctrl.Submit(c.Request.Context(), submit)
	if err != nil {
		respondError(c, err)
		return
	}
	utils.Created(c, message, out)
}
