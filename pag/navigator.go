package pag

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/oklahomer/go-kasumi/logger"
	"github.com/oklahomer/go-sarah/v4"
	"golang.org/x/sync/errgroup"

	discord "github.com/oklahomer/go-sarah-discordkit"
)

const (
	// DefaultTimeout is the idle period after which a Navigator stops listening to reactions.
	DefaultTimeout = 300 * time.Second

	// DefaultColor is the embed accent color.
	DefaultColor = 0x0084FD

	eventBufferSize = 16
)

// Messenger is the subset of *discordgo.Session methods a Navigator uses to display itself.
type Messenger interface {
	ChannelMessageSendEmbed(channelID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageEditEmbed(channelID, messageID string, embed *discordgo.MessageEmbed, options ...discordgo.RequestOption) (*discordgo.Message, error)
	ChannelMessageDelete(channelID, messageID string, options ...discordgo.RequestOption) error
	MessageReactionAdd(channelID, messageID, emojiID string, options ...discordgo.RequestOption) error
	MessageReactionsRemoveAll(channelID, messageID string, options ...discordgo.RequestOption) error
}

// Subscriber registers a Discord event handler and returns a function that removes it.
type Subscriber interface {
	AddHandler(handler interface{}) func()
}

// Session is what a Navigator needs from the host bot.
// *discordgo.Session satisfies this interface.
type Session interface {
	Messenger
	Subscriber
}

var _ Session = (*discordgo.Session)(nil)

// Logger is what a Navigator reports delivery failures and lifecycle events to.
// *logrus.Logger and *logrus.Entry satisfy this interface.
type Logger interface {
	Debugf(format string, args ...interface{})
	Warnf(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

// kasumiLogger forwards to the go-kasumi logger that go-sarah and the adapter log to.
type kasumiLogger struct{}

func (kasumiLogger) Debugf(format string, args ...interface{}) {
	logger.Debugf(format, args...)
}

func (kasumiLogger) Warnf(format string, args ...interface{}) {
	logger.Warnf(format, args...)
}

func (kasumiLogger) Errorf(format string, args ...interface{}) {
	logger.Errorf(format, args...)
}

// State represents where a Navigator is in its lifecycle.
type State int

const (
	// StateIdle is a Navigator that has not been run yet.
	StateIdle State = iota
	// StateRunning is a Navigator that displays its message and listens to reactions.
	StateRunning
	// StateClosed is a Navigator closed by its owner. Its message is deleted.
	StateClosed
	// StateDeleted is a Navigator whose message was deleted by someone else.
	StateDeleted
	// StateExpired is a Navigator that was idle for its whole timeout. Its reactions are cleared.
	StateExpired
	// StateCancelled is a Navigator stopped by its context. Its reactions are cleared.
	StateCancelled
	// StateFailed is a Navigator that stopped because Discord rejected a request.
	StateFailed
)

// String returns a human-readable name of the state.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateClosed:
		return "closed"
	case StateDeleted:
		return "deleted"
	case StateExpired:
		return "expired"
	case StateCancelled:
		return "cancelled"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Option defines a function signature for Navigator's functional options.
type Option func(*Navigator)

// WithTitle sets the embed title.
func WithTitle(title string) Option {
	return func(n *Navigator) {
		n.title = title
	}
}

// WithColor sets the embed accent color.
func WithColor(color int) Option {
	return func(n *Navigator) {
		n.color = color
	}
}

// WithTimeout sets the idle period after which the Navigator expires.
// Every page turn restarts this period.
func WithTimeout(timeout time.Duration) Option {
	return func(n *Navigator) {
		n.timeout = timeout
	}
}

// WithBotUser sets the bot user shown in the embed header.
func WithBotUser(user *discordgo.User) Option {
	return func(n *Navigator) {
		n.botUser = user
	}
}

// WithGuild tells the Navigator it is shown in a guild channel.
// Buttons marked GuildOnly are hidden otherwise.
func WithGuild(guildID string) Option {
	return func(n *Navigator) {
		n.guildID = guildID
	}
}

// WithInitialPage sets the 0-based page to show first.
// Out of range values wrap around like any other page turn.
func WithInitialPage(index int) Option {
	return func(n *Navigator) {
		n.index = index
	}
}

// WithLogger sets the Logger to use instead of the go-kasumi logger.
func WithLogger(l Logger) Option {
	return func(n *Navigator) {
		n.log = l
	}
}

// WithButtons replaces DefaultButtons.
func WithButtons(buttons ...Button) Option {
	return func(n *Navigator) {
		n.buttons = buttons
	}
}

type eventKind int

const (
	reactionEvent eventKind = iota
	deleteEvent
)

type event struct {
	kind   eventKind
	userID string
	emoji  string
}

// Navigator displays a list of pages as a single embed message and turns pages on its owner's reactions.
type Navigator struct {
	session   Session
	channelID string
	guildID   string
	ownerID   string
	pages     []string
	title     string
	color     int
	timeout   time.Duration
	botUser   *discordgo.User
	buttons   []Button
	log       Logger

	mu      sync.RWMutex
	index   int
	message *discordgo.Message
	state   State
	shared  bool

	events  chan event
	turned  chan struct{}
	stopped chan struct{}
	done    chan struct{}
}

// New creates a Navigator that shows pages in the given channel and is controlled by the given user.
// ErrNoPages is returned when pages is empty, and ErrInvalidTimeout when a non-positive timeout is given.
func New(session Session, channelID string, ownerID string, pages []string, options ...Option) (*Navigator, error) {
	if len(pages) == 0 {
		return nil, ErrNoPages
	}

	n := &Navigator{
		session:   session,
		channelID: channelID,
		ownerID:   ownerID,
		pages:     append([]string(nil), pages...),
		color:     DefaultColor,
		timeout:   DefaultTimeout,
		buttons:   DefaultButtons(),
		log:       kasumiLogger{},
		state:     StateIdle,
		events:    make(chan event, eventBufferSize),
		turned:    make(chan struct{}, 1),
		stopped:   make(chan struct{}),
		done:      make(chan struct{}),
	}

	for _, opt := range options {
		opt(n)
	}

	if n.timeout <= 0 {
		return nil, ErrInvalidTimeout
	}

	n.index = wrap(n.index, len(n.pages))
	n.buttons = visibleButtons(n.buttons, len(n.pages), n.guildID != "")

	return n, nil
}

// NewFromInput creates a Navigator in response to a received command.
// The channel, the guild, the owner and the bot user are taken from the given *discord.Input.
func NewFromInput(session Session, input sarah.Input, pages []string, options ...Option) (*Navigator, error) {
	in, ok := input.(*discord.Input)
	if !ok {
		return nil, fmt.Errorf("%T: %w", input, discord.ErrUnexpectedInput)
	}

	channelID, _ := in.ReplyTo().(discord.ChannelID)
	opts := append([]Option{WithBotUser(in.BotUser()), WithGuild(in.GuildID())}, options...)
	return New(session, string(channelID), in.AuthorID(), pages, opts...)
}

func wrap(index, size int) int {
	index %= size
	if index < 0 {
		index += size
	}
	return index
}

// Len returns the number of pages.
func (n *Navigator) Len() int {
	return len(n.pages)
}

// Owner returns the ID of the user who controls this Navigator.
func (n *Navigator) Owner() string {
	return n.ownerID
}

// Index returns the 0-based index of the page currently displayed.
func (n *Navigator) Index() int {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.index
}

// Page returns the content of the page currently displayed.
func (n *Navigator) Page() string {
	return n.pages[n.Index()]
}

// Shared reports whether anyone, not only the owner, may currently turn pages.
func (n *Navigator) Shared() bool {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.shared
}

// State returns the current lifecycle state.
func (n *Navigator) State() State {
	n.mu.RLock()
	defer n.mu.RUnlock()
	return n.state
}

// MessageID returns the ID of the displayed message, or an empty string before it is sent.
func (n *Navigator) MessageID() string {
	n.mu.RLock()
	defer n.mu.RUnlock()
	if n.message == nil {
		return ""
	}
	return n.message.ID
}

// Done returns a channel that is closed when Run returns.
func (n *Navigator) Done() <-chan struct{} {
	return n.done
}

// Start runs the Navigator in a new goroutine and returns Done.
func (n *Navigator) Start(ctx context.Context) <-chan struct{} {
	go n.Run(ctx)
	return n.done
}

// Run sends the first page and serves reactions until the owner closes the Navigator,
// its message is deleted, it stays idle for the whole timeout, or ctx is canceled.
// Errors from Discord are logged and end the run; they are never returned or panicked.
// A Navigator runs only once.
func (n *Navigator) Run(ctx context.Context) {
	n.mu.Lock()
	if n.state != StateIdle {
		state := n.state
		n.mu.Unlock()
		n.log.Warnf("Navigator in channel %s is already %s.", n.channelID, state)
		return
	}
	n.state = StateRunning
	n.mu.Unlock()

	defer close(n.done)

	message, err := n.session.ChannelMessageSendEmbed(n.channelID, n.render(n.Index()))
	if err != nil {
		n.log.Errorf("Failed to send navigator to %s: %+v", n.channelID, err)
		n.finish(StateFailed)
		return
	}

	n.mu.Lock()
	n.message = message
	n.mu.Unlock()

	unsubscribe := n.subscribe()
	defer unsubscribe()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error {
		// Stop attaching reactions once the wait is over.
		defer cancel()
		return n.wait(gctx)
	})
	g.Go(func() error {
		return n.attachButtons(gctx)
	})

	err = g.Wait()
	switch {
	case err != nil:
		n.log.Errorf("Navigator on message %s stopped: %+v", message.ID, err)
		n.finish(StateFailed)

	case ctx.Err() != nil && n.finish(StateCancelled):
		n.clearReactions()

	case n.State() == StateExpired:
		n.clearReactions()
	}
}

// wait blocks until the Navigator reaches a terminal state.
// The idle timer restarts on every page turn.
func (n *Navigator) wait(ctx context.Context) error {
	defer close(n.stopped)

	timer := time.NewTimer(n.timeout)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case <-timer.C:
			n.log.Debugf("Navigator on message %s expired.", n.MessageID())
			// Reactions are cleared by Run once no reaction is being attached.
			n.finish(StateExpired)
			return nil

		case ev := <-n.events:
			stop, err := n.dispatch(ev)
			if err != nil || stop {
				return err
			}

			select {
			case <-n.turned:
				timer.Reset(n.timeout)
			default:
			}
		}
	}
}

// dispatch handles an event and reports whether the Navigator should stop.
func (n *Navigator) dispatch(ev event) (bool, error) {
	if ev.kind == deleteEvent {
		n.finish(StateDeleted)
		return true, nil
	}

	button, ok := n.button(ev.emoji)
	if !ok {
		return false, nil
	}

	isOwner := ev.userID == n.ownerID
	switch {
	case n.botUser != nil && ev.userID == n.botUser.ID:
		// The bot's own reactions are the buttons being attached.
		return false, nil

	case button.Action == ActionShare:
		if !isOwner {
			return false, nil
		}
		return false, n.toggleShared()

	case !isOwner && !n.Shared():
		return false, nil

	case button.Action == ActionClose:
		n.close()
		return true, nil
	}

	return false, n.advanceTo(button.Action.target(n.Index()))
}

// toggleShared opens control to everyone or gives it back to the owner alone.
// The footer tells which is the case.
func (n *Navigator) toggleShared() error {
	n.mu.Lock()
	n.shared = !n.shared
	index := n.index
	messageID := ""
	if n.message != nil {
		messageID = n.message.ID
	}
	n.mu.Unlock()

	_, err := n.session.ChannelMessageEditEmbed(n.channelID, messageID, n.render(index))
	if err != nil {
		return fmt.Errorf("failed to edit message %s: %w", messageID, err)
	}
	return nil
}

func (n *Navigator) button(emoji string) (Button, bool) {
	emoji = normalizeEmoji(emoji)
	for _, b := range n.buttons {
		if normalizeEmoji(b.Emoji) == emoji {
			return b, true
		}
	}
	return Button{}, false
}

// advanceTo turns to the given page, wrapping around either end, and signals the idle timer.
// The message is edited only when the page actually changes.
func (n *Navigator) advanceTo(index int) error {
	n.mu.Lock()
	index = wrap(index, len(n.pages))
	changed := index != n.index
	n.index = index
	messageID := ""
	if n.message != nil {
		messageID = n.message.ID
	}
	n.mu.Unlock()

	if changed {
		_, err := n.session.ChannelMessageEditEmbed(n.channelID, messageID, n.render(index))
		if err != nil {
			return fmt.Errorf("failed to edit message %s: %w", messageID, err)
		}
	}

	select {
	case n.turned <- struct{}{}:
	default:
	}

	return nil
}

func (n *Navigator) close() {
	n.finish(StateClosed)

	messageID := n.MessageID()
	if err := n.session.ChannelMessageDelete(n.channelID, messageID); err != nil {
		n.log.Errorf("Failed to delete navigator message %s: %+v", messageID, err)
	}
}

func (n *Navigator) clearReactions() {
	messageID := n.MessageID()
	if err := n.session.MessageReactionsRemoveAll(n.channelID, messageID); err != nil {
		n.log.Errorf("Failed to clear reactions on navigator message %s: %+v", messageID, err)
	}
}

// finish moves a running Navigator to the given terminal state.
// It returns false when the Navigator was no longer running.
func (n *Navigator) finish(state State) bool {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.state != StateRunning {
		return false
	}
	n.state = state
	return true
}

func (n *Navigator) attachButtons(ctx context.Context) error {
	messageID := n.MessageID()
	for _, b := range n.buttons {
		if ctx.Err() != nil {
			return nil
		}

		err := n.session.MessageReactionAdd(n.channelID, messageID, b.Emoji)
		if err != nil {
			if ctx.Err() != nil || n.State() != StateRunning {
				// The message is likely gone because the Navigator already finished.
				return nil
			}
			return fmt.Errorf("failed to add reaction %s to message %s: %w", b.Emoji, messageID, err)
		}
	}
	return nil
}

func (n *Navigator) subscribe() func() {
	removers := []func(){
		n.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionAdd) {
			n.onReaction(r.MessageReaction)
		}),
		// Removing a reaction turns the page just like adding one.
		n.session.AddHandler(func(_ *discordgo.Session, r *discordgo.MessageReactionRemove) {
			n.onReaction(r.MessageReaction)
		}),
		n.session.AddHandler(func(_ *discordgo.Session, m *discordgo.MessageDelete) {
			n.onMessageDelete(m)
		}),
	}

	return func() {
		for _, remove := range removers {
			remove()
		}
	}
}

func (n *Navigator) onReaction(r *discordgo.MessageReaction) {
	if r == nil || r.MessageID != n.MessageID() {
		return
	}

	n.enqueue(event{
		kind:   reactionEvent,
		userID: r.UserID,
		emoji:  r.Emoji.APIName(),
	})
}

func (n *Navigator) onMessageDelete(m *discordgo.MessageDelete) {
	if m == nil || m.Message == nil || m.ID != n.MessageID() {
		return
	}

	n.enqueue(event{kind: deleteEvent})
}

func (n *Navigator) enqueue(ev event) {
	select {
	case n.events <- ev:
	case <-n.stopped:
	}
}

func (n *Navigator) render(index int) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       n.title,
		Description: n.pages[index],
		Color:       n.color,
		Footer: &discordgo.MessageEmbedFooter{
			Text: fmt.Sprintf("Page %d of %d", index+1, len(n.pages)),
		},
	}
	if n.Shared() {
		embed.Footer.Text += " · anyone can turn pages"
	}

	if n.botUser != nil {
		embed.Author = &discordgo.MessageEmbedAuthor{
			Name:    n.botUser.Username,
			IconURL: n.botUser.AvatarURL(""),
		}
	}

	return embed
}
