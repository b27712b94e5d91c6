package webhook

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/barcelona-partners/voicegw/internal/leads"
	"github.com/barcelona-partners/voicegw/pkg/logging"
)

const (
	openerReply  = "Hello, this is the team of Fernanda Aro at Barcelona Partners. Who am I speaking with?"
	apologyReply = "Sorry, the call cut out for a moment. Could you repeat that?"
)

// Responder produces one spoken reply for one utterance.
type Responder interface {
	GetResponse(ctx context.Context, utterance, callID string) (string, error)
}

// JobSink accepts lead-save jobs off the request path.
type JobSink interface {
	Enqueue(job leads.Job)
}

// Handler answers the voice platform's turn webhook. The contract is strict:
// every request gets HTTP 200 with a complete envelope, because any other
// status or shape makes the platform drop the live call. Failures inside a
// turn degrade to a spoken apology instead.
type Handler struct {
	responder  Responder
	sink       JobSink
	logger     logging.Logger
	modelLabel string
}

type HandlerConfig struct {
	Responder  Responder
	Sink       JobSink
	Logger     logging.Logger
	ModelLabel string
}

func NewHandler(cfg HandlerConfig) *Handler {
	modelLabel := cfg.ModelLabel
	if modelLabel == "" {
		modelLabel = "gpt-4o"
	}
	return &Handler{
		responder:  cfg.Responder,
		sink:       cfg.Sink,
		logger:     cfg.Logger,
		modelLabel: modelLabel,
	}
}

func RegisterRoutes(router gin.IRoutes, handler *Handler) {
	router.POST("/chat/completions", handler.HandleTurn)
}

// HandleTurn processes one conversation turn.
func (h *Handler) HandleTurn(c *gin.Context) {
	start := time.Now()
	outcome := "answered"
	defer func() {
		// Last line of defense: even a panic below must not break the call.
		if r := recover(); r != nil {
			h.logger.WithField("panic", r).Error("Recovered panic in turn handler")
			turnsTotal.WithLabelValues("panic").Inc()
			c.JSON(http.StatusOK, NewEnvelope(h.modelLabel, apologyReply))
			return
		}
		turnsTotal.WithLabelValues(outcome).Inc()
		turnDuration.Observe(time.Since(start).Seconds())
	}()

	// A malformed body becomes an empty request rather than a 400. The
	// platform retries nothing; a rejected turn is a dead call.
	var request TurnRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		h.logger.WithError(err).Warn("Failed to decode turn request, treating as empty")
		request = TurnRequest{}
	}

	utterance := request.Utterance()
	callID := request.CallID()
	phone := request.CallerPhone()

	log := h.logger.WithFields(logging.Fields{
		"call_id": callID,
		"phone":   phone,
	})

	var reply string
	if utterance == "" {
		// First turn of an outbound call carries no user speech yet. Open
		// with the script instead of asking the model to improvise a
		// greeting.
		outcome = "opener"
		reply = openerReply
		log.Info("Empty utterance, sending opener")
	} else {
		answer, err := h.responder.GetResponse(c.Request.Context(), utterance, callID)
		if err != nil {
			outcome = "apology"
			reply = apologyReply
			log.WithError(err).Error("Turn failed, sending apology")
		} else {
			reply = answer
			log.WithField("duration", time.Since(start).String()).Info("Turn answered")
		}
	}

	// Every computed reply schedules a lead write, fallback and opener
	// included, so a known caller's row reflects the latest contact even
	// when the turn itself went wrong.
	if h.sink != nil {
		h.sink.Enqueue(leads.Job{
			Phone:     phone,
			Utterance: utterance,
			Reply:     reply,
		})
	}

	c.JSON(http.StatusOK, NewEnvelope(h.modelLabel, reply))
}
