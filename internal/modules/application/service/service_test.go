package service

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"testing"
	"time"

	"anoa.com/campusrecruit/internal/authz"
	"anoa.com/campusrecruit/internal/entity"
	"anoa.com/campusrecruit/internal/modules/application/dto"
	"anoa.com/campusrecruit/internal/modules/application/repository"
	jobRepo "anoa.com/campusrecruit/internal/modules/job/repository"
	notification "anoa.com/campusrecruit/internal/modules/notification/service"
	profileRepo "anoa.com/campusrecruit/internal/modules/profile/repository"
	"anoa.com/campusrecruit/pkg/apperror"
	"anoa.com/campusrecruit/pkg/metrics"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type store struct {
	mu        sync.Mutex
	jobs      map[uuid.UUID]*entity.Job
	students  map[uuid.UUID]*entity.StudentProfile
	companies map[uuid.UUID]*entity.CompanyProfile
	apps      map[uuid.UUID]*entity.Application
	seq       int
}

func newStore() *store {
	return &store{
		jobs:      map[uuid.UUID]*entity.Job{},
		students:  map[uuid.UUID]*entity.StudentProfile{},
		companies: map[uuid.UUID]*entity.CompanyProfile{},
		apps:      map[uuid.UUID]*entity.Application{},
	}
}

// hydrate copies app and attaches its job and student like the gorm preloads.
func (s *store) hydrate(a *entity.Application) entity.Application {
	cp := *a
	if j, ok := s.jobs[a.JobID]; ok {
		job := *j
		cp.Job = &job
	}
	if st, ok := s.students[a.StudentID]; ok {
		student := *st
		cp.Student = &student
	}
	return cp
}

func (s *store) sorted(keep func(*entity.Application) bool) []entity.Application {
	var out []entity.Application
	for _, a := range s.apps {
		if keep(a) {
			out = append(out, s.hydrate(a))
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

type memApps struct{ s *store }

func (m *memApps) Exists(_ context.Context, studentID, jobID uuid.UUID) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.apps {
		if a.StudentID == studentID && a.JobID == jobID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memApps) Create(_ context.Context, app *entity.Application, contact repository.ContactUpdate) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, a := range m.s.apps {
		if a.StudentID == app.StudentID && a.JobID == app.JobID {
			return apperror.ErrConflict
		}
	}
	if st, ok := m.s.students[app.StudentID]; ok {
		if contact.Phone != "" {
			st.Phone = contact.Phone
		}
		if contact.ResumeURL != "" {
			st.ResumeURL = contact.ResumeURL
		}
	}
	m.s.seq++
	app.ID = uuid.New()
	app.CreatedAt = time.Unix(int64(m.s.seq), 0)
	cp := *app
	m.s.apps[app.ID] = &cp
	return nil
}

func (m *memApps) FindByID(_ context.Context, id uuid.UUID) (*entity.Application, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.apps[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := m.s.hydrate(a)
	return &cp, nil
}

func (m *memApps) UpdateStatus(_ context.Context, id uuid.UUID, status entity.ApplicationStatus, message *string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	a, ok := m.s.apps[id]
	if !ok {
		return apperror.ErrNotFound
	}
	a.Status = status
	if message != nil {
		a.Message = message
	}
	return nil
}

func (m *memApps) ListByStudent(_ context.Context, studentID uuid.UUID) ([]entity.Application, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.sorted(func(a *entity.Application) bool { return a.StudentID == studentID }), nil
}

func (m *memApps) ListByCompany(_ context.Context, companyID uuid.UUID) ([]entity.Application, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.sorted(func(a *entity.Application) bool {
		j, ok := m.s.jobs[a.JobID]
		return ok && j.CompanyID == companyID
	}), nil
}

func (m *memApps) ListByCompanyWithOwner(ctx context.Context, companyID uuid.UUID) ([]entity.Application, error) {
	return m.ListByCompany(ctx, companyID)
}

func (m *memApps) ListByJob(_ context.Context, jobID uuid.UUID) ([]entity.Application, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return m.s.sorted(func(a *entity.Application) bool { return a.JobID == jobID }), nil
}

type memJobs struct{ s *store }

func (m *memJobs) List(context.Context, jobRepo.Filter) ([]entity.Job, error) { return nil, nil }

func (m *memJobs) FindByID(_ context.Context, id uuid.UUID) (*entity.Job, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	j, ok := m.s.jobs[id]
	if !ok {
		return nil, apperror.ErrNotFound
	}
	cp := *j
	return &cp, nil
}

func (m *memJobs) Create(context.Context, *entity.Job) error { return nil }

func (m *memJobs) Update(context.Context, *entity.Job) error { return nil }

func (m *memJobs) Delete(context.Context, uuid.UUID) error { return nil }

type memProfiles struct{ s *store }

func (m *memProfiles) FindStudentByUserID(_ context.Context, userID uuid.UUID) (*entity.StudentProfile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, st := range m.s.students {
		if st.UserID == userID {
			cp := *st
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (m *memProfiles) FindCompanyByUserID(_ context.Context, userID uuid.UUID) (*entity.CompanyProfile, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	for _, c := range m.s.companies {
		if c.UserID == userID {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperror.ErrNotFound
}

func (m *memProfiles) SaveStudent(context.Context, uuid.UUID, *string, *entity.StudentProfile) error {
	return nil
}

func (m *memProfiles) StudentStats(context.Context, uuid.UUID) (profileRepo.ApplicationStats, error) {
	return profileRepo.ApplicationStats{}, nil
}

type dispatchCall struct {
	kind   entity.NotificationKind
	to     string
	args   notification.TemplateArgs
	ctxErr error
	hasTTL bool
}

type fakeDispatcher struct {
	mu    sync.Mutex
	calls []dispatchCall
	err   error
}

func (d *fakeDispatcher) Dispatch(ctx context.Context, kind entity.NotificationKind, to string, args notification.TemplateArgs) (notification.DeliveryResult, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, hasTTL := ctx.Deadline()
	d.calls = append(d.calls, dispatchCall{kind: kind, to: to, args: args, ctxErr: ctx.Err(), hasTTL: hasTTL})
	if d.err != nil {
		return notification.DeliveryResult{Kind: kind, To: to, Outcome: notification.OutcomeFailed}, d.err
	}
	return notification.DeliveryResult{Kind: kind, To: to, Outcome: notification.OutcomeSent}, nil
}

type fakeInbox struct {
	notification.NotificationService
	mu      sync.Mutex
	entries []*entity.Notification
}

func (f *fakeInbox) CreateNotification(_ context.Context, n *entity.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, n)
	return nil
}

type fixture struct {
	store      *store
	svc        Service
	dispatcher *fakeDispatcher
	inbox      *fakeInbox
}

func newFixture() *fixture {
	s := newStore()
	d := &fakeDispatcher{}
	inbox := &fakeInbox{}
	svc := NewService(&memApps{s}, &memJobs{s}, &memProfiles{s}, d, inbox, Config{
		PublicBaseURL: "https://api.campus.test/",
		MailTimeout:   time.Second,
	})
	return &fixture{store: s, svc: svc, dispatcher: d, inbox: inbox}
}

func (f *fixture) student(name, email string) (*authz.Principal, *entity.StudentProfile) {
	user := &entity.User{ID: uuid.New(), Name: name, Email: email, Role: entity.RoleStudent}
	st := &entity.StudentProfile{ID: uuid.New(), UserID: user.ID, User: user}
	f.store.students[st.ID] = st
	return &authz.Principal{UserID: user.ID, Role: entity.RoleStudent, Name: name}, st
}

func (f *fixture) company(name string) (*authz.Principal, *entity.CompanyProfile) {
	user := &entity.User{ID: uuid.New(), Name: name + " HR", Email: "hr@" + name + ".test", Role: entity.RoleCompany}
	c := &entity.CompanyProfile{ID: uuid.New(), UserID: user.ID, User: user, Name: name}
	f.store.companies[c.ID] = c
	return &authz.Principal{UserID: user.ID, Role: entity.RoleCompany, Name: user.Name}, c
}

func (f *fixture) job(company *entity.CompanyProfile, title string) *entity.Job {
	j := &entity.Job{ID: uuid.New(), CompanyID: company.ID, Title: title, Description: "work"}
	f.store.jobs[j.ID] = j
	return j
}

func statusOf(t *testing.T, err error) int {
	t.Helper()
	require.Error(t, err)
	return apperror.MapErrorToStatus(err)
}

func strPtr(s string) *string { return &s }

func TestApplyCreatesPendingApplication(t *testing.T) {
	f := newFixture()
	s1, profile := f.student("Ayu", "ayu@campus.test")
	_, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")

	app, err := f.svc.Apply(context.Background(), s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, app.Status)
	assert.Equal(t, profile.ID, app.StudentID)
	assert.Equal(t, j1.ID, app.JobID)
}

func TestApplyTwiceConflicts(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	_, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)

	_, err = f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	assert.Equal(t, http.StatusConflict, statusOf(t, err))
	assert.EqualError(t, err, "Already applied")
	assert.Len(t, f.store.apps, 1)
}

func TestConcurrentApplyHasOneWinner(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	_, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")

	const callers = 8
	var wg sync.WaitGroup
	errs := make([]error, callers)
	for i := range callers {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.Apply(context.Background(), s1, j1.ID, dto.ApplyInput{})
		}(i)
	}
	wg.Wait()

	var ok, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, apperror.ErrConflict):
			conflicts++
		}
	}
	assert.Equal(t, 1, ok)
	assert.Equal(t, callers-1, conflicts)
	assert.Len(t, f.store.apps, 1)
}

func TestApplyPreconditions(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	companyCaller, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")
	orphan := &authz.Principal{UserID: uuid.New(), Role: entity.RoleStudent}
	ctx := context.Background()

	_, err := f.svc.Apply(ctx, orphan, j1.ID, dto.ApplyInput{})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
	assert.EqualError(t, err, "Student profile missing")

	_, err = f.svc.Apply(ctx, s1, uuid.New(), dto.ApplyInput{})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.EqualError(t, err, "Job not found")

	_, err = f.svc.Apply(ctx, companyCaller, j1.ID, dto.ApplyInput{})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = f.svc.Apply(ctx, nil, j1.ID, dto.ApplyInput{})
	assert.Equal(t, http.StatusUnauthorized, statusOf(t, err))
}

func TestApplyMergesContactFieldsIndependently(t *testing.T) {
	f := newFixture()
	s1, profile := f.student("Ayu", "ayu@campus.test")
	profile.Phone = "0800"
	profile.ResumeURL = "/uploads/old.pdf"
	_, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")

	_, err := f.svc.Apply(context.Background(), s1, j1.ID, dto.ApplyInput{Phone: " 0812 "})
	require.NoError(t, err)

	assert.Equal(t, "0812", profile.Phone)
	assert.Equal(t, "/uploads/old.pdf", profile.ResumeURL)
}

func TestAcceptSendsOneOfferToStudent(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	c1Caller, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, updated.Status)

	require.Len(t, f.dispatcher.calls, 1)
	call := f.dispatcher.calls[0]
	assert.Equal(t, entity.NotificationOffer, call.kind)
	assert.Equal(t, "ayu@campus.test", call.to)
	assert.Equal(t, "Ayu", call.args.StudentName)
	assert.Equal(t, "acme", call.args.CompanyName)
	assert.Equal(t, "Backend Engineer", call.args.JobTitle)

	require.Len(t, f.inbox.entries, 1)
	entry := f.inbox.entries[0]
	assert.Equal(t, s1.UserID, entry.UserID)
	assert.Equal(t, app.ID, entry.ApplicationID)
	assert.Equal(t, "Congratulations! acme accepted your application", entry.Title)
}

func TestInterviewCarriesMessage(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	c1Caller, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "INTERVIEW", Message: strPtr("Tuesday 10:00")})
	require.NoError(t, err)
	_, err = f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "interview"})
	require.NoError(t, err)

	require.Len(t, f.dispatcher.calls, 2)
	assert.Equal(t, entity.NotificationInterviewInvite, f.dispatcher.calls[0].kind)
	assert.Equal(t, "Tuesday 10:00", f.dispatcher.calls[0].args.Note)
	assert.Equal(t, "", f.dispatcher.calls[1].args.Note)
}

func TestDispatchFailureDoesNotFailUpdate(t *testing.T) {
	f := newFixture()
	f.dispatcher.err = errors.New("smtp: 421 service not available")
	s1, _ := f.student("Ayu", "ayu@campus.test")
	c1Caller, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)

	updated, err := f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, updated.Status)
	assert.Equal(t, entity.StatusAccepted, f.store.apps[app.ID].Status)
	assert.Len(t, f.dispatcher.calls, 1)
}

func TestDispatchOutlivesRequestCancellation(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	c1Caller, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")

	app, err := f.svc.Apply(context.Background(), s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "ACCEPTED"})
	require.NoError(t, err)

	require.Len(t, f.dispatcher.calls, 1)
	assert.NoError(t, f.dispatcher.calls[0].ctxErr)
	assert.True(t, f.dispatcher.calls[0].hasTTL)
}

func TestStatusesWithoutNotification(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	c1Caller, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)

	for _, status := range []string{"REJECTED", "PENDING", ""} {
		_, err := f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: status})
		require.NoError(t, err, status)
	}
	assert.Empty(t, f.dispatcher.calls)
	assert.Empty(t, f.inbox.entries)
	assert.Equal(t, entity.StatusPending, f.store.apps[app.ID].Status)
}

func TestUpdateStatusValidation(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	c1Caller, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)

	_, err = f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "HIRED"})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))

	_, err = f.svc.UpdateStatus(ctx, c1Caller, uuid.New(), dto.UpdateStatusInput{Status: "ACCEPTED"})
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
	assert.EqualError(t, err, "Application not found")

	updated, err := f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "approved"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, updated.Status)
}

func TestAcceptThenForeignCompanyIsForbidden(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	c1Caller, c1 := f.company("acme")
	c2Caller, _ := f.company("globex")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, app.Status)

	updated, err := f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "ACCEPTED"})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusAccepted, updated.Status)
	require.Len(t, f.dispatcher.calls, 1)
	assert.Equal(t, "ayu@campus.test", f.dispatcher.calls[0].to)

	_, err = f.svc.UpdateStatus(ctx, c2Caller, app.ID, dto.UpdateStatusInput{Status: "REJECTED"})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
	assert.EqualError(t, err, "Not authorized to update this application")
	assert.Equal(t, entity.StatusAccepted, f.store.apps[app.ID].Status)
	assert.Len(t, f.dispatcher.calls, 1)

	// a company account without a profile never owns anything
	bare := &authz.Principal{UserID: uuid.New(), Role: entity.RoleCompany}
	_, err = f.svc.UpdateStatus(ctx, bare, app.ID, dto.UpdateStatusInput{Status: "REJECTED"})
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))
}

func TestListForCompanyIsolation(t *testing.T) {
	f := newFixture()
	c1Caller, c1 := f.company("acme")
	_, c2 := f.company("globex")
	ctx := context.Background()

	var c1Jobs []*entity.Job
	for _, title := range []string{"Backend", "Frontend"} {
		c1Jobs = append(c1Jobs, f.job(c1, title))
	}
	c2Job := f.job(c2, "Data")

	for i, email := range []string{"a@campus.test", "b@campus.test", "c@campus.test"} {
		p, profile := f.student(email, email)
		profile.ResumeURL = "/uploads/" + email + ".pdf"
		if i == 0 {
			profile.ResumeURL = "https://res.cloudinary.com/demo/raw/upload/cv.pdf"
		}
		for _, j := range append(c1Jobs, c2Job) {
			_, err := f.svc.Apply(ctx, p, j.ID, dto.ApplyInput{})
			require.NoError(t, err)
		}
	}

	apps, err := f.svc.ListForCompany(ctx, c1Caller)
	require.NoError(t, err)
	assert.Len(t, apps, 6)
	for i, a := range apps {
		assert.Equal(t, c1.ID, a.Job.CompanyID)
		assert.Regexp(t, `^https://`, a.Student.ResumeURL)
		if i > 0 {
			assert.False(t, a.CreatedAt.After(apps[i-1].CreatedAt))
		}
	}

	var sawRelative bool
	for _, a := range apps {
		if a.Student.ResumeURL == "https://api.campus.test/uploads/b@campus.test.pdf" {
			sawRelative = true
		}
	}
	assert.True(t, sawRelative)
}

func TestListForJob(t *testing.T) {
	f := newFixture()
	c1Caller, c1 := f.company("acme")
	c2Caller, _ := f.company("globex")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	apps, err := f.svc.ListForJob(ctx, c1Caller, j1.ID)
	require.NoError(t, err)
	assert.NotNil(t, apps)
	assert.Empty(t, apps)

	_, err = f.svc.ListForJob(ctx, c2Caller, j1.ID)
	assert.Equal(t, http.StatusForbidden, statusOf(t, err))

	_, err = f.svc.ListForJob(ctx, c1Caller, uuid.New())
	assert.Equal(t, http.StatusNotFound, statusOf(t, err))
}

func TestListForStudentNewestFirst(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	_, c1 := f.company("acme")
	first := f.job(c1, "First")
	second := f.job(c1, "Second")
	ctx := context.Background()

	for _, j := range []*entity.Job{first, second} {
		_, err := f.svc.Apply(ctx, s1, j.ID, dto.ApplyInput{})
		require.NoError(t, err)
	}

	apps, err := f.svc.ListForStudent(ctx, s1)
	require.NoError(t, err)
	require.Len(t, apps, 2)
	assert.Equal(t, second.ID, apps[0].JobID)
	assert.Equal(t, first.ID, apps[1].JobID)

	_, err = f.svc.ListForStudent(ctx, &authz.Principal{UserID: uuid.New(), Role: entity.RoleStudent})
	assert.Equal(t, http.StatusBadRequest, statusOf(t, err))
}

func TestAbsoluteURL(t *testing.T) {
	cases := map[string]string{
		"":                          "",
		"/uploads/cv.pdf":           "https://api.test/uploads/cv.pdf",
		"uploads/cv.pdf":            "https://api.test/uploads/cv.pdf",
		"https://cdn.test/cv.pdf":   "https://cdn.test/cv.pdf",
		"http://legacy.test/cv.pdf": "http://legacy.test/cv.pdf",
	}
	for in, want := range cases {
		assert.Equal(t, want, absoluteURL("https://api.test", in), in)
	}
}

func transitionCount(t *testing.T, status entity.ApplicationStatus) float64 {
	t.Helper()
	families, err := metrics.Registry.Gather()
	require.NoError(t, err)
	for _, mf := range families {
		if mf.GetName() != "campusrecruit_applications_status_updates_total" {
			continue
		}
		for _, m := range mf.GetMetric() {
			for _, l := range m.GetLabel() {
				if l.GetName() == "status" && l.GetValue() == string(status) {
					return m.GetCounter().GetValue()
				}
			}
		}
	}
	return 0
}

func TestMessageOnlyUpdateIsNotCountedAsTransition(t *testing.T) {
	f := newFixture()
	s1, _ := f.student("Ayu", "ayu@campus.test")
	c1Caller, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")
	ctx := context.Background()

	app, err := f.svc.Apply(ctx, s1, j1.ID, dto.ApplyInput{})
	require.NoError(t, err)

	before := transitionCount(t, entity.StatusPending)
	updated, err := f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Message: strPtr("see you soon")})
	require.NoError(t, err)
	assert.Equal(t, entity.StatusPending, updated.Status)
	assert.Equal(t, before, transitionCount(t, entity.StatusPending))

	_, err = f.svc.UpdateStatus(ctx, c1Caller, app.ID, dto.UpdateStatusInput{Status: "PENDING"})
	require.NoError(t, err)
	assert.Equal(t, before+1, transitionCount(t, entity.StatusPending))
}

func TestApplyReadsEitherResumeKey(t *testing.T) {
	f := newFixture()
	s1, profile := f.student("Ayu", "ayu@campus.test")
	_, c1 := f.company("acme")
	j1 := f.job(c1, "Backend Engineer")

	_, err := f.svc.Apply(context.Background(), s1, j1.ID, dto.ApplyInput{ResumeURL: " /uploads/cv.pdf "})
	require.NoError(t, err)
	assert.Equal(t, "/uploads/cv.pdf", profile.ResumeURL)

	assert.Equal(t, "/uploads/b.pdf", dto.ApplyInput{ResumeURLSnake: "/uploads/b.pdf"}.Resume())
	assert.Equal(t, "/uploads/a.pdf", dto.ApplyInput{ResumeURL: "/uploads/a.pdf", ResumeURLSnake: "/uploads/b.pdf"}.Resume())
}
