package conversation

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"replydesk/ai"
	"replydesk/auth"
	"replydesk/contract"
	"replydesk/domain"
	"replydesk/domain/event"
	"replydesk/errors"
	"replydesk/repositories"
)

const helpText = `commands:
  next                        show the oldest pending message and start processing it
  generate:<message id>       draft a reply with the configured persona
  manual:<message id>         reply by hand, the next line is the reply text
  edit:<response id>          rework a response, the next line is the feedback
  send:<response id>          deliver a response through its source
  ignore:<message id>         drop a message without replying
  status                      connector and queue overview
  search <terms>              full text search over stored messages
  prefs                       show drafting preferences
  style <text>                set the drafting writing style
  reset:all                   clear all messages and responses
  register <name> <password>  create an operator account
  login <name> <password>     open an operator session
  help                        this text`

// ControllerConfig carries the static knobs the controller needs beyond
// its collaborators.
type ControllerConfig struct {
	DefaultOperator string
	OperatorHash    string // argon2id hash from config, empty disables the gate
	DraftMaxTokens  int
}

// Controller executes operator commands against the queue, the drafter
// and the connector fleet. One instance serves every operator; all
// per-operator state lives in the session store.
type Controller struct {
	log       *slog.Logger
	registry  contract.IRegistry
	messages  repositories.IMessageRepository
	responses repositories.IResponseRepository
	prefs     repositories.IPreferenceRepository
	operators repositories.IOperatorRepository
	drafter   ai.Drafter
	gate      *auth.Gate
	tokens    *auth.TokenManager
	sessions  *SessionStore
	events    chan<- event.Event
	cfg       ControllerConfig
}

func NewController(
	log *slog.Logger,
	registry contract.IRegistry,
	messages repositories.IMessageRepository,
	responses repositories.IResponseRepository,
	prefs repositories.IPreferenceRepository,
	operators repositories.IOperatorRepository,
	drafter ai.Drafter,
	gate *auth.Gate,
	tokens *auth.TokenManager,
	events chan<- event.Event,
	cfg ControllerConfig,
) *Controller {
	return &Controller{
		log:       log,
		registry:  registry,
		messages:  messages,
		responses: responses,
		prefs:     prefs,
		operators: operators,
		drafter:   drafter,
		gate:      gate,
		tokens:    tokens,
		sessions:  NewSessionStore(),
		events:    events,
		cfg:       cfg,
	}
}

// Handle runs one operator input and returns the reply text. The
// operator argument is the transport's identity for the session; after
// login the token's operator is what preferences are keyed by.
func (c *Controller) Handle(ctx context.Context, operator, input string) string {
	if operator == "" {
		operator = c.cfg.DefaultOperator
	}

	command, err := ParseCommand(input)
	if err != nil {
		return fmt.Sprintf("%v (try help)", err)
	}

	session := c.sessions.Get(operator)
	actor, err := c.gate.Authorize(string(command.Kind), session.Token)
	if err != nil {
		return "please login first: login <name> <password>"
	}
	if actor == "" {
		actor = operator
	}

	switch command.Kind {
	case KindNext:
		return c.handleNext(operator)
	case KindGenerate:
		return c.handleGenerate(ctx, operator, actor, command.ID)
	case KindIgnore:
		return c.handleIgnore(operator, command.ID)
	case KindManual:
		return c.handleManual(operator, command.ID)
	case KindEdit:
		return c.handleEdit(operator, command.ID)
	case KindSend:
		return c.handleSend(ctx, operator, command.ID)
	case KindStatus:
		return c.handleStatus()
	case KindSearch:
		return c.handleSearch(ctx, command.Args)
	case KindPrefs:
		return c.handlePrefs(actor)
	case KindStyle:
		return c.handleStyle(actor, command.Args)
	case KindReset:
		return c.handleReset()
	case KindRegister:
		return c.handleRegister(command.Args)
	case KindLogin:
		return c.handleLogin(operator, command.Args)
	case KindFreeText:
		return c.handleFreeText(ctx, operator, command.Text)
	default:
		return helpText
	}
}

func (c *Controller) handleNext(operator string) string {
	message, err := c.messages.NextPending()
	if errors.Is(err, errors.ErrNoPendingMessages) {
		return "queue is empty, nothing pending"
	}
	if err != nil {
		c.log.Error("reading the queue failed", "error", err)
		return fmt.Sprintf("could not read the queue: %v", err)
	}

	message, err = c.messages.UpdateStatus(message.ID, domain.StatusProcessing)
	if err != nil {
		c.log.Error("marking message as processing failed", "message", message.ID, "error", err)
		return fmt.Sprintf("could not start processing %s: %v", message.ID, err)
	}

	c.sessions.ClearPending(operator)
	return formatMessage(message)
}

func (c *Controller) handleGenerate(ctx context.Context, operator, actor string, id uuid.UUID) string {
	message, err := c.messages.FetchByID(id)
	if err != nil {
		return fmt.Sprintf("no message with id %s", id)
	}

	preference, err := c.prefs.Get(actor)
	if err != nil {
		c.log.Warn("loading preferences failed, drafting with defaults", "operator", actor, "error", err)
		preference = domain.DefaultPreference(actor)
	}

	draft := c.drafter.Draft(ctx,
		ai.BuildSystemPrompt(preference),
		ai.BuildUserPrompt(message),
		c.cfg.DraftMaxTokens)

	response := domain.Response{
		ID:        uuid.New(),
		MessageID: message.ID,
		Content:   draft,
		Kind:      domain.ResponseGenerated,
		CreatedAt: time.Now().UTC(),
	}
	if err := c.responses.Store(response); err != nil {
		c.log.Error("storing draft failed", "message", id, "error", err)
		return fmt.Sprintf("could not save the draft: %v", err)
	}

	c.sessions.ClearPending(operator)
	return fmt.Sprintf("draft for message %s:\n%s\nresponse id: %s (edit:<id> to rework, send:<id> to deliver)",
		message.ID, draft, response.ID)
}

func (c *Controller) handleIgnore(operator string, id uuid.UUID) string {
	if _, err := c.messages.UpdateStatus(id, domain.StatusIgnored); err != nil {
		if errors.Is(err, errors.ErrMessageNotFound) {
			return fmt.Sprintf("no message with id %s", id)
		}
		return fmt.Sprintf("could not ignore %s: %v", id, err)
	}

	c.sessions.ClearPending(operator)
	return fmt.Sprintf("message %s ignored", id)
}

func (c *Controller) handleManual(operator string, id uuid.UUID) string {
	if _, err := c.messages.FetchByID(id); err != nil {
		return fmt.Sprintf("no message with id %s", id)
	}

	c.sessions.Update(operator, func(session *Session) {
		session.State = StateAwaitingManual
		session.MessageID = id
		session.ResponseID = uuid.Nil
	})
	return fmt.Sprintf("type your reply to message %s as plain text", id)
}

func (c *Controller) handleEdit(operator string, id uuid.UUID) string {
	if _, err := c.responses.FetchByID(id); err != nil {
		return fmt.Sprintf("no response with id %s", id)
	}

	c.sessions.Update(operator, func(session *Session) {
		session.State = StateAwaitingEdit
		session.ResponseID = id
		session.MessageID = uuid.Nil
	})
	return fmt.Sprintf("describe how to rework response %s", id)
}

// handleSend delivers through the transport first. The sent flag and the
// answered status are only written after the registry reported success,
// so a failed delivery can simply be retried.
func (c *Controller) handleSend(ctx context.Context, operator string, id uuid.UUID) string {
	response, err := c.responses.FetchByID(id)
	if err != nil {
		return fmt.Sprintf("no response with id %s", id)
	}
	if response.IsSent {
		return fmt.Sprintf("response %s was already sent", id)
	}

	message, err := c.messages.FetchByID(response.MessageID)
	if err != nil {
		return fmt.Sprintf("the message behind response %s is gone: %v", id, err)
	}

	if err := c.registry.SendMessage(ctx, message.Source, message.Sender, response.Content); err != nil {
		c.log.Warn("delivery failed", "response", id, "source", message.Source, "error", err)
		return fmt.Sprintf("send failed, the response stays unsent: %v", err)
	}

	if _, err := c.responses.MarkSent(id, time.Now()); err != nil {
		c.log.Error("delivered but marking sent failed", "response", id, "error", err)
		return fmt.Sprintf("delivered, but marking it sent failed: %v", err)
	}
	if _, err := c.messages.UpdateStatus(message.ID, domain.StatusAnswered); err != nil {
		c.log.Warn("delivered but closing the message failed", "message", message.ID, "error", err)
	}

	c.emit(event.New(event.ResponseSentType, event.ResponseSent{
		ResponseID: id,
		MessageID:  message.ID,
		Source:     message.Source,
	}))

	c.sessions.ClearPending(operator)
	return fmt.Sprintf("sent to %s via %s", message.Sender, message.Source)
}

func (c *Controller) handleFreeText(ctx context.Context, operator, text string) string {
	session := c.sessions.Get(operator)

	switch session.State {
	case StateAwaitingManual:
		response := domain.Response{
			ID:        uuid.New(),
			MessageID: session.MessageID,
			Content:   text,
			Kind:      domain.ResponseManual,
			CreatedAt: time.Now().UTC(),
		}
		if err := c.responses.Store(response); err != nil {
			c.log.Error("storing manual response failed", "message", session.MessageID, "error", err)
			return fmt.Sprintf("could not save your reply, still listening: %v", err)
		}

		c.sessions.ClearPending(operator)
		return fmt.Sprintf("manual response saved for message %s\nresponse id: %s (send:%s to deliver)",
			session.MessageID, response.ID, response.ID)

	case StateAwaitingEdit:
		response, err := c.responses.FetchByID(session.ResponseID)
		if err != nil {
			c.sessions.ClearPending(operator)
			return fmt.Sprintf("the response you were editing is gone: %v", err)
		}

		revised := c.drafter.Revise(ctx, response.Content, text)
		if _, err := c.responses.UpdateContent(session.ResponseID, revised); err != nil {
			c.log.Error("storing rework failed", "response", session.ResponseID, "error", err)
			return fmt.Sprintf("could not save the rework, still listening: %v", err)
		}

		c.sessions.ClearPending(operator)
		return fmt.Sprintf("response %s reworked:\n%s", session.ResponseID, revised)

	default:
		return helpText
	}
}

func (c *Controller) handleStatus() string {
	var b strings.Builder

	b.WriteString("connectors:\n")
	statuses := c.registry.Status()
	for _, source := range domain.KnownSources() {
		status, ok := statuses[source]
		if !ok {
			continue
		}
		state := "disconnected"
		if status.Connected {
			state = "connected"
		}
		fmt.Fprintf(&b, "  %-10s %-10s %-13s %d requests", source, status.Mode, state, status.Requests)
		if status.LastError != "" {
			fmt.Fprintf(&b, " (last error: %s)", status.LastError)
		}
		b.WriteString("\n")
	}

	counts, err := c.messages.CountByStatus()
	if err != nil {
		fmt.Fprintf(&b, "queue: unavailable (%v)", err)
		return b.String()
	}
	b.WriteString("queue:\n")
	for _, status := range []domain.Status{domain.StatusPending, domain.StatusProcessing, domain.StatusAnswered, domain.StatusIgnored} {
		fmt.Fprintf(&b, "  %-11s %d\n", status, counts[status])
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Controller) handleSearch(ctx context.Context, terms string) string {
	hits, total, err := c.messages.Search(ctx, terms, "", 0)
	if err != nil {
		c.log.Error("search failed", "terms", terms, "error", err)
		return fmt.Sprintf("search failed: %v", err)
	}
	if total == 0 {
		return fmt.Sprintf("no results for %q", terms)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%d result(s) for %q:\n", total, terms)
	for _, message := range hits {
		fmt.Fprintf(&b, "  [%s] %s: %.60s (id %s)\n", message.Source, message.Sender, message.Content, message.ID)
	}
	return strings.TrimRight(b.String(), "\n")
}

func (c *Controller) handlePrefs(actor string) string {
	preference, err := c.prefs.Get(actor)
	if err != nil {
		return fmt.Sprintf("could not load preferences: %v", err)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "operator: %s\n", preference.Operator)
	fmt.Fprintf(&b, "writing style: %s\n", preference.WritingStyle)
	fmt.Fprintf(&b, "traits: %s\n", strings.Join(preference.Traits, ", "))
	fmt.Fprintf(&b, "interests: %s\n", strings.Join(preference.Interests, ", "))
	b.WriteString("rules:")
	for _, rule := range preference.Rules {
		fmt.Fprintf(&b, "\n  - %s", rule)
	}
	return b.String()
}

func (c *Controller) handleStyle(actor, text string) string {
	preference, err := c.prefs.Get(actor)
	if err != nil {
		return fmt.Sprintf("could not load preferences: %v", err)
	}

	preference.WritingStyle = text
	if err := c.prefs.Save(preference); err != nil {
		return fmt.Sprintf("could not save preferences: %v", err)
	}
	return fmt.Sprintf("writing style set to %q", text)
}

func (c *Controller) handleReset() string {
	if err := c.messages.ResetAll(); err != nil {
		return fmt.Sprintf("clearing messages failed: %v", err)
	}
	if err := c.responses.ResetAll(); err != nil {
		return fmt.Sprintf("messages cleared, clearing responses failed: %v", err)
	}
	return "queue and responses cleared"
}

func (c *Controller) handleRegister(args string) string {
	fields := strings.Fields(args)
	if len(fields) != 2 {
		return "usage: register <name> <password>"
	}

	creds := auth.Credentials{Name: fields[0], Password: fields[1]}
	if err := auth.ValidateCredentials(creds); err != nil {
		return fmt.Sprintf("registration rejected: %v", err)
	}

	hash, err := auth.HashPassword(creds.Password)
	if err != nil {
		c.log.Error("hashing password failed", "error", err)
		return fmt.Sprintf("registration failed: %v", err)
	}

	if _, err := c.operators.CreateOperator(creds.Name, hash); err != nil {
		if errors.Is(err, errors.ErrOperatorExists) {
			return fmt.Sprintf("operator %s already exists", creds.Name)
		}
		c.log.Error("storing operator failed", "operator", creds.Name, "error", err)
		return fmt.Sprintf("registration failed: %v", err)
	}

	c.log.Info("operator registered", "operator", creds.Name)
	return fmt.Sprintf("operator %s registered", creds.Name)
}

func (c *Controller) handleLogin(operator, args string) string {
	fields := strings.Fields(args)

	var name, password string
	switch len(fields) {
	case 1:
		name, password = c.cfg.DefaultOperator, fields[0]
	case 2:
		name, password = fields[0], fields[1]
	default:
		return "usage: login <name> <password>"
	}
	if name == "" {
		return "usage: login <name> <password>"
	}

	hash := ""
	roles := []string{"operator"}
	if name == c.cfg.DefaultOperator && c.cfg.OperatorHash != "" {
		hash = c.cfg.OperatorHash
	} else {
		stored, err := c.operators.GetOperatorByName(name)
		if err != nil {
			c.log.Warn("login rejected", "operator", name)
			return "login failed: invalid credentials"
		}
		hash = stored.PasswordHash
		roles = stored.Roles
	}

	match, err := auth.ComparePassword(password, hash)
	if err != nil || !match {
		c.log.Warn("login rejected", "operator", name)
		return "login failed: invalid credentials"
	}

	token, err := c.tokens.Generate(name, roles)
	if err != nil {
		c.log.Error("issuing session token failed", "operator", name, "error", err)
		return fmt.Sprintf("login failed: %v", err)
	}

	c.sessions.Update(operator, func(session *Session) {
		session.Token = token
		session.Operator = name
	})
	return fmt.Sprintf("logged in as %s", name)
}

func (c *Controller) emit(evt event.Event) {
	if c.events == nil {
		return
	}
	select {
	case c.events <- evt:
	default:
		c.log.Warn("event channel full, dropping", "type", evt.Type)
	}
}

func formatMessage(message domain.Message) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%s] from %s | %s | received %s\n",
		message.Source, message.Sender, message.Category, message.ReceivedAt.Format(time.RFC822))
	fmt.Fprintf(&b, "%s\n", message.Content)
	fmt.Fprintf(&b, "message id: %s (generate:<id> | manual:<id> | ignore:<id>)", message.ID)
	return b.String()
}
