package service

import (
	"context"
	"io"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/wb-go/wbf/ginext"

	"clubhub/internal/guard"
	"clubhub/internal/model"
	"clubhub/internal/repo"
)

// fakeRepo is an in-memory Repository with the same transactional contract
// as the SQL implementation: admission decisions run under one lock against
// committed state.
type fakeRepo struct {
	mu            sync.Mutex
	events        map[int64]*model.Event
	registrations map[int64]*model.Registration
	members       map[string]*model.Member
	plans         []model.FeePlan
	nextEventID   int64
	nextRegID     int64
	countErr      error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		events:        make(map[int64]*model.Event),
		registrations: make(map[int64]*model.Registration),
		members:       make(map[string]*model.Member),
		plans: []model.FeePlan{
			{ID: 1, Label: "1year", Amount: 150, Years: 1},
			{ID: 2, Label: "2year", Amount: 250, Years: 2},
		},
		nextEventID: 1,
		nextRegID:   1,
	}
}

func (f *fakeRepo) CreateEvent(_ context.Context, e *model.Event) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	id := f.nextEventID
	f.nextEventID++
	cp := *e
	cp.ID = id
	f.events[id] = &cp
	return id, nil
}

func (f *fakeRepo) UpdateEvent(_ context.Context, e *model.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[e.ID]; !ok {
		return repo.ErrEventNotFound
	}
	if e.TotalSeats < f.countLocked(e.ID) {
		return repo.ErrSeatsBelowRegistered
	}
	cp := *e
	f.events[e.ID] = &cp
	return nil
}

func (f *fakeRepo) GetEventByID(_ context.Context, id int64) (*model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	e, ok := f.events[id]
	if !ok {
		return nil, repo.ErrEventNotFound
	}
	cp := *e
	return &cp, nil
}

func (f *fakeRepo) GetAllEvents(_ context.Context) ([]model.Event, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Event, 0, len(f.events))
	for _, e := range f.events {
		out = append(out, *e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DisplayOrder != out[j].DisplayOrder {
			return out[i].DisplayOrder < out[j].DisplayOrder
		}
		return out[i].Date.Before(out[j].Date)
	})
	return out, nil
}

func (f *fakeRepo) DeleteEventTx(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.events[id]; !ok {
		return repo.ErrEventNotFound
	}
	for regID, reg := range f.registrations {
		if reg.EventID == id {
			delete(f.registrations, regID)
		}
	}
	delete(f.events, id)
	return nil
}

func (f *fakeRepo) CountRegistrations(_ context.Context, eventID int64) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.countErr != nil {
		return 0, f.countErr
	}
	return f.countLocked(eventID), nil
}

func (f *fakeRepo) countLocked(eventID int64) int {
	n := 0
	for _, reg := range f.registrations {
		if reg.EventID == eventID {
			n++
		}
	}
	return n
}

func (f *fakeRepo) RegisterTx(_ context.Context, reg *model.Registration) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	event, ok := f.events[reg.EventID]
	if !ok {
		return 0, repo.ErrEventNotFound
	}
	if event.EndedAt(time.Now()) {
		return 0, repo.ErrEventClosed
	}
	if f.countLocked(reg.EventID) >= event.TotalSeats {
		return 0, repo.ErrSoldOut
	}
	for _, existing := range f.registrations {
		if existing.EventID != reg.EventID {
			continue
		}
		if existing.Email == reg.Email {
			return 0, repo.ErrDuplicateRegistration
		}
		if existing.MemberID != nil && reg.MemberID != nil && *existing.MemberID == *reg.MemberID {
			return 0, repo.ErrDuplicateRegistration
		}
	}

	if event.IsPaid {
		reg.PaymentStatus = model.PaymentPending
	} else {
		reg.PaymentStatus = model.PaymentNone
	}

	id := f.nextRegID
	f.nextRegID++
	cp := *reg
	cp.ID = id
	cp.CreatedAt = time.Now()
	f.registrations[id] = &cp
	return id, nil
}

func (f *fakeRepo) GetRegistrationByID(_ context.Context, id int64) (*model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return nil, repo.ErrRegistrationNotFound
	}
	cp := *reg
	return &cp, nil
}

func (f *fakeRepo) GetRegistrationsByEventID(_ context.Context, eventID int64) ([]model.Registration, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Registration
	for _, reg := range f.registrations {
		if reg.EventID == eventID {
			out = append(out, *reg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) DeleteRegistration(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.registrations[id]; !ok {
		return repo.ErrRegistrationNotFound
	}
	delete(f.registrations, id)
	return nil
}

func (f *fakeRepo) SetRegistrationPaymentRef(_ context.Context, id int64, ref string, amount int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return repo.ErrRegistrationNotFound
	}
	if reg.PaymentStatus == model.PaymentConfirmed {
		return repo.ErrPaymentNotPending
	}
	reg.PaymentStatus = model.PaymentPending
	reg.PaymentRef = ref
	reg.AmountPaid = amount
	return nil
}

func (f *fakeRepo) ConfirmRegistrationPayment(_ context.Context, id int64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return repo.ErrRegistrationNotFound
	}
	if reg.PaymentStatus != model.PaymentPending {
		return repo.ErrPaymentNotPending
	}
	reg.PaymentStatus = model.PaymentConfirmed
	return nil
}

func (f *fakeRepo) DeleteIfPaymentPendingTx(_ context.Context, id int64) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	reg, ok := f.registrations[id]
	if !ok {
		return false, nil
	}
	if reg.PaymentStatus != model.PaymentPending {
		return false, nil
	}
	delete(f.registrations, id)
	return true, nil
}

func (f *fakeRepo) CreateMember(_ context.Context, m *model.Member) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.members {
		if existing.UserID == m.UserID || existing.Email == m.Email {
			return repo.ErrDuplicateMember
		}
	}
	cp := *m
	cp.CreatedAt = time.Now()
	f.members[m.ID] = &cp
	return nil
}

func (f *fakeRepo) GetMemberByID(_ context.Context, id string) (*model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, repo.ErrMemberNotFound
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) GetMemberByUserID(_ context.Context, userID string) (*model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, m := range f.members {
		if m.UserID == userID {
			cp := *m
			return &cp, nil
		}
	}
	return nil, repo.ErrMemberNotFound
}

func (f *fakeRepo) GetAllMembers(_ context.Context) ([]model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Member, 0, len(f.members))
	for _, m := range f.members {
		out = append(out, *m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (f *fakeRepo) ApproveMemberTx(_ context.Context, id string, validTill time.Time, confirmPayment bool) (*model.Member, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return nil, repo.ErrMemberNotFound
	}
	if confirmPayment && m.PaymentStatus != model.PaymentPending {
		return nil, repo.ErrPaymentNotPending
	}
	m.Status = model.MemberApproved
	if !m.Role.Elevated() {
		m.Role = model.RoleMember
	}
	if m.Position == "" {
		m.Position = model.DefaultPosition
	}
	m.ValidTill = &validTill
	if confirmPayment {
		m.PaymentStatus = model.PaymentConfirmed
	}
	cp := *m
	return &cp, nil
}

func (f *fakeRepo) RejectMember(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return repo.ErrMemberNotFound
	}
	if m.Status != model.MemberPending {
		return repo.ErrMemberNotPending
	}
	m.Status = model.MemberRejected
	return nil
}

func (f *fakeRepo) DeleteMemberTx(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.members[id]; !ok {
		return repo.ErrMemberNotFound
	}
	for _, reg := range f.registrations {
		if reg.MemberID != nil && *reg.MemberID == id {
			reg.MemberID = nil
		}
	}
	delete(f.members, id)
	return nil
}

func (f *fakeRepo) UpdateMemberProfile(_ context.Context, id string, p model.ProfileUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return repo.ErrMemberNotFound
	}
	if p.Name != nil {
		m.Name = *p.Name
	}
	if p.Phone != nil {
		m.Phone = *p.Phone
	}
	if p.Department != nil {
		m.Department = *p.Department
	}
	if p.Year != nil {
		m.Year = *p.Year
	}
	if p.Course != nil {
		m.Course = *p.Course
	}
	if p.ProfilePic != nil {
		m.ProfilePic = *p.ProfilePic
	}
	return nil
}

func (f *fakeRepo) UpdateMemberAdmin(_ context.Context, id string, u model.AdminUpdate) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return repo.ErrMemberNotFound
	}
	if u.Role != nil {
		m.Role = *u.Role
	}
	if u.Status != nil {
		m.Status = *u.Status
	}
	if u.Position != nil {
		m.Position = *u.Position
	}
	if u.Duration != nil {
		m.Duration = *u.Duration
	}
	if u.PaymentRef != nil {
		m.PaymentRef = *u.PaymentRef
	}
	if u.AmountPaid != nil {
		m.AmountPaid = *u.AmountPaid
	}
	if u.ValidTill != nil {
		m.ValidTill = u.ValidTill
	}
	return nil
}

func (f *fakeRepo) SetMemberPaymentRef(_ context.Context, id, ref string, amount int, duration string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	m, ok := f.members[id]
	if !ok {
		return repo.ErrMemberNotFound
	}
	if m.PaymentStatus == model.PaymentConfirmed {
		return repo.ErrPaymentNotPending
	}
	m.PaymentStatus = model.PaymentPending
	m.PaymentRef = ref
	m.AmountPaid = amount
	m.Duration = duration
	return nil
}

func (f *fakeRepo) GetFeePlans(_ context.Context) ([]model.FeePlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.FeePlan, len(f.plans))
	copy(out, f.plans)
	return out, nil
}

func (f *fakeRepo) GetFeePlanByLabel(_ context.Context, label string) (*model.FeePlan, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.plans {
		if p.Label == label {
			cp := p
			return &cp, nil
		}
	}
	return nil, repo.ErrFeePlanNotFound
}

type fakePublisher struct {
	mu       sync.Mutex
	messages [][]byte
	delays   []int
}

func (p *fakePublisher) Publish(message []byte, delaySeconds int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.messages = append(p.messages, message)
	p.delays = append(p.delays, delaySeconds)
	return nil
}

type fakeMailer struct {
	mu     sync.Mutex
	states []string
	to     []string
}

func (m *fakeMailer) SendRegistrationEmail(_, state, recipient string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
	m.to = append(m.to, recipient)
	return nil
}

func (m *fakeMailer) SendMembershipEmail(state, recipient string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.states = append(m.states, state)
	m.to = append(m.to, recipient)
	return nil
}

type avatarStub struct{}

func (avatarStub) UploadAvatar(userID, filename, _ string, _ io.Reader) (string, error) {
	return "https://cdn.test/" + userID + "/" + filename, nil
}

type testEnv struct {
	repo *fakeRepo
	rbt  *fakePublisher
	mail *fakeMailer
	app  *ginext.Engine
}

// setup builds a router with the same route layout as production. The
// identity middleware is replaced with a plain header so tests can act as
// anyone without minting tokens.
func setup(t *testing.T) *testEnv {
	t.Helper()

	f := newFakeRepo()
	rbt := &fakePublisher{}
	mail := &fakeMailer{}
	log := zerolog.Nop()

	svc := NewService(f, guard.New(f, &log), &log, rbt, mail, avatarStub{}, nil)

	app := ginext.New("test")
	app.Use(func(c *ginext.Context) {
		if actor := c.GetHeader("X-Actor"); actor != "" {
			c.Set(ActorKey, actor)
		}
		c.Next()
	})

	v1 := app.Group("/v1")
	v1.GET("/events", svc.ListEvents)
	v1.GET("/events/:id", svc.GetEvent)
	v1.GET("/events/:id/seats", svc.SeatsRemaining)
	v1.POST("/events", svc.CreateEvent)
	v1.PUT("/events/:id", svc.UpdateEvent)
	v1.DELETE("/events/:id", svc.DeleteEvent)
	v1.POST("/events/:id/register", svc.Register)
	v1.GET("/events/:id/registrations", svc.ListRegistrations)
	v1.DELETE("/registrations/:id", svc.CancelRegistration)
	v1.POST("/registrations/:id/payment", svc.SubmitRegistrationPayment)
	v1.POST("/registrations/:id/payment/verify", svc.VerifyRegistrationPayment)
	v1.POST("/members", svc.Signup)
	v1.GET("/profile", svc.GetMemberStatus)
	v1.PUT("/profile", svc.UpdateProfile)
	v1.POST("/profile/payment", svc.SubmitMembershipPayment)
	v1.GET("/verify/:userID", svc.VerifyMember)
	v1.GET("/plans", svc.ListFeePlans)
	v1.GET("/members", svc.ListMembers)
	v1.POST("/members/:id/approve", svc.ApproveMember)
	v1.POST("/members/:id/reject", svc.RejectMember)
	v1.POST("/members/:id/payment/verify", svc.VerifyMemberPayment)
	v1.PUT("/members/:id", svc.UpdateMember)
	v1.DELETE("/members/:id", svc.DeleteMember)

	return &testEnv{repo: f, rbt: rbt, mail: mail, app: app}
}

func (e *testEnv) addAdmin(userID string) *model.Member {
	m := &model.Member{
		ID:     "admin-" + userID,
		UserID: userID,
		Name:   "Admin",
		Email:  userID + "@club.test",
		Status: model.MemberApproved,
		Role:   model.RoleAdmin,
	}
	e.repo.members[m.ID] = m
	return m
}

func (e *testEnv) addMember(userID string, role model.Role, status model.MemberStatus) *model.Member {
	m := &model.Member{
		ID:     "member-" + userID,
		UserID: userID,
		Name:   "Member " + userID,
		Email:  userID + "@club.test",
		Status: status,
		Role:   role,
	}
	e.repo.members[m.ID] = m
	return m
}

func (e *testEnv) addEvent(ev *model.Event) *model.Event {
	id := e.repo.nextEventID
	e.repo.nextEventID++
	ev.ID = id
	if ev.Date.IsZero() {
		ev.Date = time.Now().Add(48 * time.Hour)
	}
	e.repo.events[id] = ev
	return ev
}

var _ http.Handler = (*ginext.Engine)(nil)
