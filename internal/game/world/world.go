// Package world holds the simulation: the object index and its journaled
// transactions, the object model, the core entity kinds and the action
// propagation engine.
//
// A World is owned by a single event loop and is not safe for concurrent
// use.
package world

import (
	"cmp"
	"errors"
	"math/rand/v2"
	"slices"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/cory-johannsen/tzmud/internal/game/sched"
)

// DefaultActionDelay separates a command's own reply from the room-wide
// event it raises.
const DefaultActionDelay = 100 * time.Millisecond

// Options configures a World.
type Options struct {
	Logger    *zap.Logger
	Scheduler *sched.Scheduler
	// Store receives every committed batch. Nil keeps the world in memory.
	Store Store
	// HomeID is the fallback home room.
	HomeID ID
	// ActionDelay is the default propagation delay of room events.
	ActionDelay time.Duration
	// PasswordCost is the bcrypt cost for player passwords.
	PasswordCost int
	// Rand drives mob behavior and other random choices.
	Rand *rand.Rand
	// Clock returns wall-clock time for account timestamps.
	Clock func() time.Time
	// Scripts runs the hooks of scripted objects. Nil disables scripting.
	Scripts ScriptRunner
}

// ScriptRunner runs a named hook of a loaded script on behalf of the object
// self. A script without the hook is not an error.
type ScriptRunner interface {
	Run(script, hook string, self int64, args ...string) error
}

// Root is the persisted world header: the id counter and the privilege
// lists.
type Root struct {
	NextID  ID
	Wizards []string
	Admins  []string
	Version int
}

// RootVersion is the current Root layout version.
const RootVersion = 1

// World indexes every object and brackets mutations in transactions.
type World struct {
	log          *zap.Logger
	sched        *sched.Scheduler
	store        Store
	homeID       ID
	actionDelay  time.Duration
	passwordCost int
	rand         *rand.Rand
	clock        func() time.Time
	scripts      ScriptRunner

	objects map[ID]Object
	byKind  map[Kind]map[ID]Object
	players map[string]ID
	root    Root

	tx        *journal
	dirty     map[ID]struct{}
	rootDirty bool

	clients map[ID]Client
	ticking bool
	armed   map[ID]uint64
	armSeq  uint64
}

// New returns an empty world.
func New(opts Options) *World {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = sched.New()
	}
	if opts.HomeID == NoID {
		opts.HomeID = 1
	}
	if opts.ActionDelay <= 0 {
		opts.ActionDelay = DefaultActionDelay
	}
	if opts.PasswordCost == 0 {
		opts.PasswordCost = bcrypt.DefaultCost
	}
	if opts.Rand == nil {
		opts.Rand = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}
	w := &World{
		log:          opts.Logger,
		sched:        opts.Scheduler,
		store:        opts.Store,
		homeID:       opts.HomeID,
		actionDelay:  opts.ActionDelay,
		passwordCost: opts.PasswordCost,
		rand:         opts.Rand,
		clock:        opts.Clock,
		scripts:      opts.Scripts,
		objects:      map[ID]Object{},
		byKind:       map[Kind]map[ID]Object{},
		players:      map[string]ID{},
		root:         Root{NextID: 1, Version: RootVersion},
		dirty:        map[ID]struct{}{},
		clients:      map[ID]Client{},
		armed:        map[ID]uint64{},
	}
	for _, k := range Kinds {
		w.byKind[k] = map[ID]Object{}
	}
	return w
}

// Logger returns the world's logger.
func (w *World) Logger() *zap.Logger { return w.log }

// Scheduler returns the world's task queue.
func (w *World) Scheduler() *sched.Scheduler { return w.sched }

// Now returns the virtual time.
func (w *World) Now() time.Duration { return w.sched.Now() }

// Clock returns the wall-clock time.
func (w *World) Clock() time.Time { return w.clock() }

// Rand returns the world's random source.
func (w *World) Rand() *rand.Rand { return w.rand }

// Scripts returns the script runner, if any.
func (w *World) Scripts() (ScriptRunner, bool) { return w.scripts, w.scripts != nil }

// HomeID returns the fallback home room id.
func (w *World) HomeID() ID { return w.homeID }

// Root returns a copy of the persisted header.
func (w *World) Root() Root {
	r := w.root
	r.Wizards = slices.Clone(r.Wizards)
	r.Admins = slices.Clone(r.Admins)
	return r
}

func (w *World) allocID() ID {
	w.touchRoot()
	id := w.root.NextID
	w.root.NextID++
	return id
}

// Register assigns o a fresh id and indexes it. Objects must be registered
// before any of their mutating methods are used.
func (w *World) Register(o Object) ID {
	id := w.allocID()
	o.Core().ID = id
	w.attach(o)
	w.index(o)
	w.created(id)
	if w.ticking {
		w.arm(id)
	}
	return id
}

func (w *World) attach(o Object) {
	b := o.Core()
	b.w = w
	if c, ok := o.(Container); ok {
		c.contents().owner = b
	}
}

func (w *World) index(o Object) {
	id := o.Core().ID
	w.objects[id] = o
	w.byKind[o.Kind()][id] = o
	if o.Kind() == KindPlayer {
		w.players[strings.ToLower(o.Core().Name)] = id
	}
}

// drop removes an object from every index without journaling.
func (w *World) drop(id ID) {
	o, ok := w.objects[id]
	if !ok {
		return
	}
	delete(w.objects, id)
	delete(w.byKind[o.Kind()], id)
	if o.Kind() == KindPlayer {
		name := strings.ToLower(o.Core().Name)
		if w.players[name] == id {
			delete(w.players, name)
		}
	}
}

func (w *World) unregister(id ID) {
	w.drop(id)
	delete(w.armed, id)
}

func (w *World) renamed(o Object, old string) {
	if o == nil || o.Kind() != KindPlayer {
		return
	}
	id := o.Core().ID
	if w.players[strings.ToLower(old)] == id {
		delete(w.players, strings.ToLower(old))
	}
	w.players[strings.ToLower(o.Core().Name)] = id
}

// Exists reports whether id is registered.
func (w *World) Exists(id ID) bool {
	_, ok := w.objects[id]
	return ok
}

// Object returns the object with the given id.
func (w *World) Object(id ID) (Object, bool) {
	o, ok := w.objects[id]
	return o, ok
}

// Room returns the room with the given id.
func (w *World) Room(id ID) (RoomObject, bool) {
	r, ok := w.objects[id].(RoomObject)
	return r, ok
}

// Exit returns the exit with the given id.
func (w *World) Exit(id ID) (ExitObject, bool) {
	x, ok := w.objects[id].(ExitObject)
	return x, ok
}

// Item returns the item with the given id.
func (w *World) Item(id ID) (ItemObject, bool) {
	it, ok := w.objects[id].(ItemObject)
	return it, ok
}

// Mob returns the mob with the given id.
func (w *World) Mob(id ID) (MobObject, bool) {
	m, ok := w.objects[id].(MobObject)
	return m, ok
}

// Player returns the player with the given id.
func (w *World) Player(id ID) (*Player, bool) {
	p, ok := w.objects[id].(*Player)
	return p, ok
}

// Character returns the player or mob with the given id.
func (w *World) Character(id ID) (CharacterObject, bool) {
	c, ok := w.objects[id].(CharacterObject)
	return c, ok
}

// PlayerNamed returns the player with the given name, ignoring case.
func (w *World) PlayerNamed(name string) (*Player, bool) {
	id, ok := w.players[strings.ToLower(name)]
	if !ok {
		return nil, false
	}
	return w.Player(id)
}

// Objects returns every object of kind k in id order.
func (w *World) Objects(k Kind) []Object {
	out := make([]Object, 0, len(w.byKind[k]))
	for _, o := range w.byKind[k] {
		out = append(out, o)
	}
	slices.SortFunc(out, func(a, b Object) int { return cmp.Compare(a.Core().ID, b.Core().ID) })
	return out
}

// Count returns the number of objects of kind k.
func (w *World) Count(k Kind) int {
	return len(w.byKind[k])
}

// Rooms returns every room in id order.
func (w *World) Rooms() []RoomObject {
	return typed[RoomObject](w.Objects(KindRoom))
}

// Items returns every item in id order.
func (w *World) Items() []ItemObject {
	return typed[ItemObject](w.Objects(KindItem))
}

// Mobs returns every mob in id order.
func (w *World) Mobs() []MobObject {
	return typed[MobObject](w.Objects(KindMob))
}

// Exits returns every exit in id order.
func (w *World) Exits() []ExitObject {
	return typed[ExitObject](w.Objects(KindExit))
}

// Players returns every player in id order.
func (w *World) Players() []*Player {
	return typed[*Player](w.Objects(KindPlayer))
}

func typed[T Object](objs []Object) []T {
	out := make([]T, 0, len(objs))
	for _, o := range objs {
		if t, ok := o.(T); ok {
			out = append(out, t)
		}
	}
	return out
}

// Named returns the objects of kind k whose name, or alias, matches.
func (w *World) Named(k Kind, name string) []Object {
	var exact, aka []Object
	for _, o := range w.Objects(k) {
		switch {
		case o.Core().Named(name):
			exact = append(exact, o)
		case o.Core().Aliased(name):
			aka = append(aka, o)
		}
	}
	return append(exact, aka...)
}

// RoomNamed returns the lowest-id room with the given name.
func (w *World) RoomNamed(name string) (RoomObject, bool) {
	rooms := w.Named(KindRoom, name)
	if len(rooms) == 0 {
		return nil, false
	}
	r, ok := rooms[0].(RoomObject)
	return r, ok
}

// IsWizard reports wizard privilege. Admins are wizards.
func (w *World) IsWizard(p *Player) bool {
	return p != nil && (slices.Contains(w.root.Wizards, p.Name) || slices.Contains(w.root.Admins, p.Name))
}

// IsAdmin reports admin privilege.
func (w *World) IsAdmin(p *Player) bool {
	return p != nil && slices.Contains(w.root.Admins, p.Name)
}

// SetWizard grants or revokes wizard privilege.
func (w *World) SetWizard(p *Player, v bool) {
	w.touchRoot()
	w.root.Wizards = setMember(w.root.Wizards, p.Name, v)
}

// SetAdmin grants or revokes admin privilege.
func (w *World) SetAdmin(p *Player, v bool) {
	w.touchRoot()
	w.root.Admins = setMember(w.root.Admins, p.Name, v)
}

func setMember(list []string, name string, v bool) []string {
	has := slices.Contains(list, name)
	switch {
	case v && !has:
		return append(list, name)
	case !v && has:
		return slices.DeleteFunc(list, func(s string) bool { return s == name })
	}
	return list
}

// Connect attaches a client to a player.
func (w *World) Connect(p *Player, c Client) {
	w.clients[p.ID] = c
}

// Disconnect detaches the player's client.
func (w *World) Disconnect(p *Player) {
	delete(w.clients, p.ID)
}

// Connected returns the players with a client, in id order.
func (w *World) Connected() []*Player {
	var out []*Player
	for _, p := range w.Players() {
		if _, ok := w.clients[p.ID]; ok {
			out = append(out, p)
		}
	}
	return out
}

// Later schedules fn to run in its own transaction after delay. The task is
// dropped if any of refs no longer exists when it falls due. Failures are
// logged, never returned. Inside a transaction the task is only scheduled
// once the transaction commits.
func (w *World) Later(delay time.Duration, name string, fn func() error, refs ...ID) {
	task := func() {
		for _, id := range refs {
			if !w.Exists(id) {
				return
			}
		}
		if err := w.RunTx(fn); err != nil {
			w.logTaskError(name, err, refs)
		}
	}
	if w.tx != nil {
		w.tx.later = append(w.tx.later, func() { w.sched.After(delay, task) })
		return
	}
	w.sched.After(delay, task)
}

func (w *World) logTaskError(name string, err error, refs []ID) {
	fields := []zap.Field{zap.String("task", name), zap.Error(err)}
	ids := make([]int64, len(refs))
	for i, id := range refs {
		ids[i] = int64(id)
	}
	fields = append(fields, zap.Int64s("objects", ids))
	var pe *PanicError
	if errors.As(err, &pe) {
		fields = append(fields, zap.ByteString("stack", pe.Stack))
	}
	w.log.Error("background task failed", fields...)
}

// StartTicks arms every mob think tick and room maintenance tick. Objects
// registered afterwards are armed as they are created.
func (w *World) StartTicks() {
	w.ticking = true
	w.Nudge()
}

// StopTicks stops arming new ticks. Ticks already queued still run.
func (w *World) StopTicks() {
	w.ticking = false
}

// Nudge re-arms every ticker that is not currently armed and returns how
// many were armed.
func (w *World) Nudge() int {
	n := 0
	for _, k := range []Kind{KindMob, KindRoom} {
		for _, o := range w.Objects(k) {
			if w.arm(o.Core().ID) {
				n++
			}
		}
	}
	return n
}

func (w *World) arm(id ID) bool {
	if _, ok := w.armed[id]; ok {
		return false
	}
	t, ok := w.objects[id].(Ticker)
	if !ok || t.TickPeriod() <= 0 {
		return false
	}
	w.armSeq++
	seq := w.armSeq
	w.armed[id] = seq
	w.sched.After(t.TickPeriod(), func() { w.tick(id, seq) })
	return true
}

// tick runs one armed tick. A tick whose arming was superseded is dropped.
func (w *World) tick(id ID, seq uint64) {
	if w.armed[id] != seq {
		return
	}
	delete(w.armed, id)
	t, ok := w.objects[id].(Ticker)
	if !ok {
		return
	}
	if err := w.RunTx(func() error {
		if t, ok := w.objects[id].(Ticker); ok {
			return t.Tick()
		}
		return nil
	}); err != nil {
		w.logTaskError("tick "+ClassName(t), err, []ID{id})
	}
	if w.ticking {
		w.arm(id)
	}
}

// settingChanged supersedes any queued tick so a new period applies at once.
func (w *World) settingChanged(o Object) {
	if w.ticking {
		delete(w.armed, o.Core().ID)
		w.arm(o.Core().ID)
	}
}
