// Package conversation turns classified updates into exchange calls, session
// transitions and replies. Updates of one user are handled strictly in
// arrival order; different users never wait on each other.
package conversation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"time"

	"github.com/m3rciful/tradebot/core/config"
	"github.com/m3rciful/tradebot/core/logger"
	"github.com/m3rciful/tradebot/core/telegram/state"
	"github.com/m3rciful/tradebot/internal/exchange"
)

const (
	component = "conversation"

	defaultMailboxSize = 16
)

// Reply is what the bot sends back for one event. Image wins over Choices,
// Choices win over plain Text. With an Image, Text is its caption.
type Reply struct {
	Text    string
	Choices [][]Choice
	Image   []byte
}

// Choice is one inline keyboard button.
type Choice struct {
	Label string
	Data  string
}

// Renderer draws candles as a PNG chart.
type Renderer interface {
	RenderPriceChart(ctx context.Context, symbol string, candles []exchange.Candle) ([]byte, error)
}

// Transport delivers replies to a chat.
type Transport interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendChoiceKeyboard(ctx context.Context, chatID int64, text string, choices [][]Choice) error
	SendImage(ctx context.Context, chatID int64, image []byte, caption string) error
}

// Options configures an Orchestrator. Exchange, Renderer and Transport are required.
type Options struct {
	Exchange  exchange.Exchange
	Renderer  Renderer
	Transport Transport
	// Store defaults to an in-memory store.
	Store state.Store
	// QuoteAsset filters the pairs offered by /stats.
	QuoteAsset string
	Now        func() time.Time
	// MailboxSize bounds the queued updates per user for Dispatch.
	MailboxSize int
	// EventTimeout bounds the exchange and render calls of one event. Zero disables it.
	EventTimeout time.Duration
}

// Orchestrator owns the per-user conversation state machine.
type Orchestrator struct {
	exchange     exchange.Exchange
	renderer     Renderer
	transport    Transport
	store        state.Store
	quoteAsset   string
	now          func() time.Time
	eventTimeout time.Duration
	boxes        *mailboxes
}

// New validates opts and returns a ready Orchestrator.
func New(opts Options) (*Orchestrator, error) {
	switch {
	case opts.Exchange == nil:
		return nil, errors.New("conversation: exchange is required")
	case opts.Renderer == nil:
		return nil, errors.New("conversation: renderer is required")
	case opts.Transport == nil:
		return nil, errors.New("conversation: transport is required")
	}
	if opts.Store == nil {
		opts.Store = state.NewMemoryStore()
	}
	if opts.QuoteAsset == "" {
		opts.QuoteAsset = config.DefaultQuoteAsset
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.MailboxSize <= 0 {
		opts.MailboxSize = defaultMailboxSize
	}

	o := &Orchestrator{
		exchange:     opts.Exchange,
		renderer:     opts.Renderer,
		transport:    opts.Transport,
		store:        opts.Store,
		quoteAsset:   opts.QuoteAsset,
		now:          opts.Now,
		eventTimeout: opts.EventTimeout,
	}
	o.boxes = newMailboxes(opts.MailboxSize, func(j job) {
		_ = o.handle(j.ctx, j.in, j.ev)
	})
	return o, nil
}

// Store exposes the session store, mainly for the janitor.
func (o *Orchestrator) Store() state.Store { return o.store }

// Handle processes in on the calling goroutine and returns the delivery error,
// if any. Callers must not run two Handle calls for the same user at once;
// Dispatch takes care of that.
func (o *Orchestrator) Handle(ctx context.Context, in Inbound) error {
	ev, ok := Classify(in)
	if !ok {
		o.logUnrouted(ctx, in)
		return nil
	}
	return o.handle(ctx, in, ev)
}

// Dispatch queues in on the user's mailbox and returns immediately. It
// reports false when the update is not routed, the mailbox is full or the
// orchestrator is closed.
func (o *Orchestrator) Dispatch(ctx context.Context, in Inbound) bool {
	ev, ok := Classify(in)
	if !ok {
		o.logUnrouted(ctx, in)
		return false
	}
	j := job{ctx: context.WithoutCancel(ctx), in: in, ev: ev}
	if !o.boxes.enqueue(in.UserID, j) {
		logger.Warn(ctx, component, "mailbox.rejected",
			slog.String("event_kind", ev.Kind.String()),
			slog.String("outcome", "rate_limited"),
		)
		return false
	}
	return true
}

// Close stops Dispatch and waits for queued updates to finish.
func (o *Orchestrator) Close(ctx context.Context) error {
	if err := o.boxes.close(ctx); err != nil {
		logger.Warn(ctx, component, "mailbox.drain_aborted",
			slog.Int("count", o.boxes.pending()),
			slog.String("err", err.Error()),
		)
		return err
	}
	return nil
}

func (o *Orchestrator) lookup(step state.Step, kind EventKind) (string, handlerFunc) {
	switch kind {
	case EventStart:
		return "start", o.handleStart
	case EventBuy:
		return "buy", o.handleBuy
	}
	switch step {
	case state.StepIdle:
		if kind == EventStats {
			return "stats", o.handleStats
		}
	case state.StepAwaitingSymbolChoice:
		switch kind {
		case EventStats:
			return "stats", o.handleStats
		case EventPage:
			return "page", o.handlePage
		case EventSymbol:
			return "symbol", o.handleSymbol
		}
	case state.StepAwaitingDayCount:
		if kind == EventText {
			return "day_count", o.handleDayCount
		}
	}
	return "", nil
}

func (o *Orchestrator) handle(ctx context.Context, in Inbound, ev Event) error {
	start := time.Now()
	sess, found := o.store.Get(in.UserID)
	if !found {
		sess = state.Session{UserID: in.UserID, Step: state.StepIdle}
	}

	name, h := o.lookup(sess.Step, ev.Kind)
	sum := summary{handler: name, kind: ev.Kind, step: sess.Step, next: sess.Step, start: start}
	if h == nil {
		sum.outcome = "ignored"
		o.logHandled(ctx, sum)
		return nil
	}
	ctx = logger.WithConversation(logger.WithHandler(ctx, name), string(sess.Step), sess.Symbol)

	res := o.run(ctx, h, sess, ev)
	if res.ignored {
		sum.outcome = "ignored"
		o.logHandled(ctx, sum)
		return nil
	}

	next, err := o.commit(in.UserID, sess, res)
	if err != nil {
		res.err = err
		res.reply = &Reply{Text: userMessage(err)}
	}
	sum.next = next
	sum.err = res.err

	sendErr := o.deliver(ctx, in.ChatID, res.reply)
	sum.sendErr = sendErr
	o.logHandled(ctx, sum)
	return sendErr
}

func (o *Orchestrator) run(ctx context.Context, h handlerFunc, sess state.Session, ev Event) (res result) {
	if o.eventTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.eventTimeout)
		defer cancel()
	}
	defer func() {
		if r := recover(); r != nil {
			logger.Error(ctx, component, "handler.panic",
				slog.String("err", fmt.Sprint(r)),
				slog.String("stack", string(debug.Stack())),
			)
			res = fail(errInternal)
		}
	}()
	return h(ctx, sess.Clone(), ev)
}

// commit applies the handler's decision to the store and returns the step
// the user ends up in.
func (o *Orchestrator) commit(userID int64, prev state.Session, res result) (state.Step, error) {
	switch res.mut {
	case putSession:
		next := res.next
		next.UserID = userID
		next.UpdatedAt = o.now()
		if err := next.Validate(); err != nil {
			return prev.Step, fmt.Errorf("%w: %v", errInternal, err)
		}
		o.store.Put(next)
		return next.Step, nil
	case removeSession:
		o.store.Remove(userID)
		return state.StepIdle, nil
	}
	return prev.Step, nil
}

func (o *Orchestrator) deliver(ctx context.Context, chatID int64, r *Reply) error {
	switch {
	case r == nil:
		return nil
	case len(r.Image) > 0:
		return o.transport.SendImage(ctx, chatID, r.Image, r.Text)
	case len(r.Choices) > 0:
		return o.transport.SendChoiceKeyboard(ctx, chatID, r.Text, r.Choices)
	}
	return o.transport.SendText(ctx, chatID, r.Text)
}

type summary struct {
	handler    string
	kind       EventKind
	step, next state.Step
	outcome    string
	err        error
	sendErr    error
	start      time.Time
}

func (o *Orchestrator) logHandled(ctx context.Context, s summary) {
	attrs := []slog.Attr{
		slog.String("handler", s.handler),
		slog.String("event_kind", s.kind.String()),
		slog.String("step", string(s.step)),
		slog.String("next_step", string(s.next)),
		slog.Duration("duration", logger.Took(s.start)),
	}
	level := slog.LevelInfo
	switch {
	case s.outcome == "ignored":
		level = slog.LevelDebug
	case s.err != nil:
		s.outcome = "fail"
		level = slog.LevelWarn
		attrs = append(attrs,
			slog.String("err", s.err.Error()),
			slog.String("err_code", logger.ErrorCode(s.err)),
		)
	default:
		s.outcome = "ok"
	}
	if s.sendErr != nil {
		level = slog.LevelWarn
		attrs = append(attrs, slog.String("cause", s.sendErr.Error()))
	}
	attrs = append(attrs, slog.String("outcome", s.outcome))
	logger.LogEvent(ctx, logger.Component(component), level, "handler.handled", attrs...)
}

func (o *Orchestrator) logUnrouted(ctx context.Context, in Inbound) {
	if !logger.ShouldSampleDebug() {
		return
	}
	logger.Debug(ctx, component, "update.unrouted",
		slog.Bool("callback", in.IsCallback),
		slog.String("outcome", "ignored"),
	)
}
