package tools

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sunrise-assist/server/internal/assistant/repo"
	"github.com/sunrise-assist/server/internal/calendar"
	"github.com/sunrise-assist/server/internal/knowledge"
	"github.com/sunrise-assist/server/internal/store"
)

// ---- fakes ----

type fakeStore struct {
	records map[string]*store.Appointment
	nextID  int64
	failAll bool
}

func newFakeStore() *fakeStore {
	return &fakeStore{records: make(map[string]*store.Appointment)}
}

func (f *fakeStore) Create(_ context.Context, appt *store.Appointment) (int64, error) {
	if f.failAll {
		return 0, errors.New("store down")
	}
	f.nextID++
	cp := *appt
	cp.ID = f.nextID
	f.records[appt.EventID] = &cp
	return f.nextID, nil
}

func (f *fakeStore) GetByEventID(_ context.Context, eventID string) (*store.Appointment, error) {
	if f.failAll {
		return nil, errors.New("store down")
	}
	appt, ok := f.records[eventID]
	if !ok {
		return nil, store.ErrNotFound
	}
	cp := *appt
	return &cp, nil
}

func (f *fakeStore) UpdateTimeByEventID(_ context.Context, eventID, newDate, newTime string) error {
	appt, ok := f.records[eventID]
	if !ok {
		return store.ErrNotFound
	}
	appt.Date, appt.Time = newDate, newTime
	return nil
}

func (f *fakeStore) DeleteByEventID(_ context.Context, eventID string) error {
	if _, ok := f.records[eventID]; !ok {
		return store.ErrNotFound
	}
	delete(f.records, eventID)
	return nil
}

func (f *fakeStore) ListOrdered(_ context.Context) ([]store.Appointment, error) {
	var out []store.Appointment
	for _, appt := range f.records {
		out = append(out, *appt)
	}
	return out, nil
}

func (f *fakeStore) DeleteAll(_ context.Context) error {
	f.records = make(map[string]*store.Appointment)
	return nil
}

type fakeCalendar struct {
	events  map[string]calendar.Event
	nextID  int
	failAll bool
}

func newFakeCalendar() *fakeCalendar {
	return &fakeCalendar{events: make(map[string]calendar.Event)}
}

func (f *fakeCalendar) CreateEvent(_ context.Context, ev calendar.Event) (string, error) {
	if f.failAll {
		return "", errors.New("calendar down")
	}
	f.nextID++
	id := fmt.Sprintf("evt-%d", f.nextID)
	ev.ID = id
	f.events[id] = ev
	return id, nil
}

func (f *fakeCalendar) GetEvent(_ context.Context, eventID string) (*calendar.Event, error) {
	ev, ok := f.events[eventID]
	if !ok {
		return nil, calendar.ErrEventNotFound
	}
	cp := ev
	return &cp, nil
}

func (f *fakeCalendar) UpdateEvent(_ context.Context, ev calendar.Event) error {
	if _, ok := f.events[ev.ID]; !ok {
		return calendar.ErrEventNotFound
	}
	f.events[ev.ID] = ev
	return nil
}

func (f *fakeCalendar) DeleteEvent(_ context.Context, eventID string) error {
	if _, ok := f.events[eventID]; !ok {
		return calendar.ErrEventNotFound
	}
	delete(f.events, eventID)
	return nil
}

type fakeChatModel struct {
	reply string
	err   error
	calls int
}

var _ einomodel.BaseChatModel = (*fakeChatModel)(nil)

func (f *fakeChatModel) Generate(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.Message, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return schema.AssistantMessage(f.reply, nil), nil
}

func (f *fakeChatModel) Stream(_ context.Context, _ []*schema.Message, _ ...einomodel.Option) (*schema.StreamReader[*schema.Message], error) {
	return nil, errors.New("streaming not supported")
}

func testKB() *knowledge.Base {
	return &knowledge.Base{
		Hospital: knowledge.Hospital{Name: "Sunrise Medical Center"},
		CommonSymptoms: map[string][]string{
			"Cardiology": {"chest pain", "palpitations"},
			"Neurology":  {"headache", "dizziness"},
		},
		Doctors: []knowledge.Doctor{
			{Name: "Dr. Asha Menon", Specialty: "Cardiology", Experience: "18 years"},
			{Name: "Dr. Kavitha Rao", Specialty: "Neurology", Experience: "16 years"},
		},
	}
}

type fixture struct {
	registry *Registry
	store    *fakeStore
	calendar *fakeCalendar
	threads  *repo.MemoryThreadRepository
	model    *fakeChatModel
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		store:    newFakeStore(),
		calendar: newFakeCalendar(),
		threads:  repo.NewMemoryThreadRepository(time.Hour),
		model:    &fakeChatModel{reply: "Cardiology looks like the right fit."},
	}
	t.Cleanup(f.threads.Close)

	registry, err := NewRegistry(Deps{
		Store:        f.store,
		Calendar:     f.calendar,
		Threads:      f.threads,
		KB:           testKB(),
		Knowledge:    f.model,
		Location:     time.UTC,
		HospitalName: "Sunrise Medical Center",
	})
	require.NoError(t, err)
	f.registry = registry
	return f
}

func (f *fixture) threadCtx(t *testing.T) context.Context {
	t.Helper()
	threadID, err := f.threads.Create(context.Background())
	require.NoError(t, err)
	return WithThreadID(context.Background(), threadID)
}

// ---- registry ----

func TestRegistryRejectsUnknownTool(t *testing.T) {
	f := newFixture(t)

	_, err := f.registry.Run(context.Background(), "delete_database", "{}")
	require.ErrorIs(t, err, ErrUnknownTool)
	assert.False(t, f.registry.Has("delete_database"))
}

func TestRegistryAdvertisesAllTools(t *testing.T) {
	f := newFixture(t)

	infos, err := f.registry.Infos(context.Background())
	require.NoError(t, err)
	require.Len(t, infos, 6)

	names := make([]string, 0, len(infos))
	for _, info := range infos {
		names = append(names, info.Name)
	}
	assert.Equal(t, []string{
		ToolBookAppointment, ToolUpdateAppointment, ToolCancelAppointment,
		ToolAnalyzeSymptoms, ToolHospitalInfo, ToolSearchKnowledge,
	}, names)
}

// ---- booking ----

const bookArgs = `{
	"date": "2025-12-25", "time": "14:30",
	"name": "Ravi Kumar", "phone": "+91 98765 43210",
	"email": "ravi@example.com", "city": "Bengaluru",
	"user_message": "chest pain follow-up",
	"department": "Cardiology", "doctor": "Dr. Asha Menon"
}`

func TestBookAppointmentCreatesEventAndRecord(t *testing.T) {
	f := newFixture(t)
	ctx := f.threadCtx(t)

	out, err := f.registry.Run(ctx, ToolBookAppointment, bookArgs)
	require.NoError(t, err)
	assert.Contains(t, out, "Appointment successfully booked. Event ID: evt-1.")
	assert.Contains(t, out, "Assigned to Cardiology with Dr. Asha Menon.")

	appt, err := f.store.GetByEventID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-25", appt.Date)
	assert.Equal(t, "14:30", appt.Time)
	assert.Equal(t, "Ravi Kumar", appt.PatientName)
	assert.Equal(t, "Cardiology", appt.Department)

	ev, err := f.calendar.GetEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 25, 14, 30, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, time.Hour, ev.End.Sub(ev.Start))
}

func TestBookAppointmentWithoutThreadPersistsNothing(t *testing.T) {
	f := newFixture(t)

	out, err := f.registry.Run(context.Background(), ToolBookAppointment, bookArgs)
	require.NoError(t, err)
	assert.Contains(t, out, "no active conversation thread")
	assert.Empty(t, f.store.records)
	assert.Empty(t, f.calendar.events)
}

func TestBookAppointmentRejectsBadDateFormat(t *testing.T) {
	f := newFixture(t)
	ctx := f.threadCtx(t)

	args := `{"date":"25/12/2025","time":"14:30","name":"Ravi","phone":"1","email":"r@e.com","city":"B","user_message":"x"}`
	out, err := f.registry.Run(ctx, ToolBookAppointment, args)
	require.NoError(t, err)
	assert.Contains(t, out, "invalid date or time format")
	assert.Empty(t, f.calendar.events)
}

func TestBookAppointmentFallsBackToCarriedContext(t *testing.T) {
	f := newFixture(t)
	threadID, err := f.threads.Create(context.Background())
	require.NoError(t, err)
	ctx := WithThreadID(context.Background(), threadID)

	// Triage on "chest pain" carries Cardiology with its first doctor.
	_, err = f.registry.Run(ctx, ToolAnalyzeSymptoms, `{"symptoms":"chest pain"}`)
	require.NoError(t, err)

	args := `{"date":"2025-12-25","time":"14:30","name":"Ravi","phone":"1","email":"r@e.com","city":"B","user_message":"x"}`
	out, err := f.registry.Run(ctx, ToolBookAppointment, args)
	require.NoError(t, err)
	assert.Contains(t, out, "Assigned to Cardiology with Dr. Asha Menon.")

	appt, err := f.store.GetByEventID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", appt.Department)
	assert.Equal(t, "Dr. Asha Menon", appt.Doctor)
}

func TestBookAppointmentReportsCalendarFailure(t *testing.T) {
	f := newFixture(t)
	ctx := f.threadCtx(t)
	f.calendar.failAll = true

	out, err := f.registry.Run(ctx, ToolBookAppointment, bookArgs)
	require.NoError(t, err)
	assert.Contains(t, out, "Failed to book appointment")
	assert.Empty(t, f.store.records)
}

// ---- update ----

func TestUpdateAppointmentPreservesDuration(t *testing.T) {
	f := newFixture(t)
	ctx := f.threadCtx(t)

	_, err := f.registry.Run(ctx, ToolBookAppointment, bookArgs)
	require.NoError(t, err)

	// Stretch the event to 90 minutes to prove the update keeps it.
	ev, err := f.calendar.GetEvent(ctx, "evt-1")
	require.NoError(t, err)
	ev.End = ev.Start.Add(90 * time.Minute)
	require.NoError(t, f.calendar.UpdateEvent(ctx, *ev))

	out, err := f.registry.Run(ctx, ToolUpdateAppointment,
		`{"event_id":"evt-1","new_date":"2025-12-26","new_time":"09:00"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "successfully updated to 2025-12-26 at 09:00")

	ev, err = f.calendar.GetEvent(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 12, 26, 9, 0, 0, 0, time.UTC), ev.Start)
	assert.Equal(t, time.Date(2025, 12, 26, 10, 30, 0, 0, time.UTC), ev.End)

	appt, err := f.store.GetByEventID(ctx, "evt-1")
	require.NoError(t, err)
	assert.Equal(t, "2025-12-26", appt.Date)
	assert.Equal(t, "09:00", appt.Time)
}

func TestUpdateAppointmentUnknownEventID(t *testing.T) {
	f := newFixture(t)
	ctx := f.threadCtx(t)

	out, err := f.registry.Run(ctx, ToolUpdateAppointment,
		`{"event_id":"evt-nope","new_date":"2025-12-26","new_time":"09:00"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "No appointment found with event ID evt-nope.")
}

// ---- cancel ----

func TestCancelAppointmentRemovesEventAndRecord(t *testing.T) {
	f := newFixture(t)
	ctx := f.threadCtx(t)

	_, err := f.registry.Run(ctx, ToolBookAppointment, bookArgs)
	require.NoError(t, err)

	out, err := f.registry.Run(ctx, ToolCancelAppointment, `{"event_id":"evt-1"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Appointment with event ID evt-1 successfully cancelled.")
	assert.Empty(t, f.store.records)
	assert.Empty(t, f.calendar.events)
}

func TestCancelAppointmentUnknownEventID(t *testing.T) {
	f := newFixture(t)
	ctx := f.threadCtx(t)

	out, err := f.registry.Run(ctx, ToolCancelAppointment, `{"event_id":"evt-nope"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "No appointment found with event ID evt-nope.")
}

// ---- triage ----

func TestAnalyzeSymptomsRejectsEmptyInput(t *testing.T) {
	f := newFixture(t)

	out, err := f.registry.Run(context.Background(), ToolAnalyzeSymptoms, `{"symptoms":"  "}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Please provide valid symptoms")
	assert.Zero(t, f.model.calls)
}

func TestAnalyzeSymptomsCarriesRecommendation(t *testing.T) {
	f := newFixture(t)
	threadID, err := f.threads.Create(context.Background())
	require.NoError(t, err)
	ctx := WithThreadID(context.Background(), threadID)

	out, err := f.registry.Run(ctx, ToolAnalyzeSymptoms, `{"symptoms":"sharp chest pain since morning"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Cardiology looks like the right fit.")

	tc, err := f.threads.Context(ctx, threadID)
	require.NoError(t, err)
	assert.Equal(t, "Cardiology", tc.Department)
	assert.Equal(t, "Dr. Asha Menon", tc.Doctor)
}

func TestAnalyzeSymptomsFallsBackOnModelFailure(t *testing.T) {
	f := newFixture(t)
	f.model.err = errors.New("provider unavailable")

	out, err := f.registry.Run(context.Background(), ToolAnalyzeSymptoms, `{"symptoms":"headache"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Error in symptom analysis")
}

func TestHospitalInfoRejectsEmptyQuery(t *testing.T) {
	f := newFixture(t)

	out, err := f.registry.Run(context.Background(), ToolHospitalInfo, `{"query":""}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Please provide a valid query")
	assert.Zero(t, f.model.calls)
}

// ---- search ----

func TestSearchKnowledgeMatchesDepartmentsAndDoctors(t *testing.T) {
	f := newFixture(t)

	out, err := f.registry.Run(context.Background(), ToolSearchKnowledge, `{"query":"cardiology"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "Dr. Asha Menon")
	assert.Zero(t, f.model.calls)
}

func TestSearchKnowledgeNoMatches(t *testing.T) {
	f := newFixture(t)

	out, err := f.registry.Run(context.Background(), ToolSearchKnowledge, `{"query":"dentistry"}`)
	require.NoError(t, err)
	assert.Contains(t, out, "No knowledge base entries match")
}
