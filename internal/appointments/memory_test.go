package appointments

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wolfman30/dental-voice-api/internal/notify"
	"github.com/wolfman30/dental-voice-api/internal/patients"
)

type memAppointment struct {
	id        int64
	dentistID int64
	patientID int64
	date      string
	start     string
	end       string
	reason    string
	status    string
}

// memoryStore is an in-memory Store with the same slot uniqueness rule as
// the database.
type memoryStore struct {
	mu           sync.Mutex
	dentists     []Dentist
	appointments []*memAppointment
	nextID       int64
	bookedDays   []string
	err          error
}

func newMemoryStore(dentists ...Dentist) *memoryStore {
	return &memoryStore{dentists: dentists}
}

func (m *memoryStore) ListDentists(context.Context) ([]Dentist, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return append([]Dentist(nil), m.dentists...), nil
}

func (m *memoryStore) LastDentistForPatient(_ context.Context, patientID int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var last *memAppointment
	for _, a := range m.appointments {
		if a.patientID != patientID {
			continue
		}
		if last == nil || a.date > last.date || (a.date == last.date && a.start > last.start) {
			last = a
		}
	}
	if last == nil {
		return 0, ErrNoPriorVisit
	}
	return last.dentistID, nil
}

func (m *memoryStore) BookedSlots(_ context.Context, day time.Time) (Occupancy, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	key := day.Format(dateLayout)
	m.bookedDays = append(m.bookedDays, key)
	occ := Occupancy{}
	for _, a := range m.appointments {
		if a.date == key && a.status == "Scheduled" {
			occ.Add(a.dentistID, a.start)
		}
	}
	return occ, nil
}

func (m *memoryStore) Insert(_ context.Context, na NewAppointment) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	date := na.Date.Format(dateLayout)
	for _, a := range m.appointments {
		if a.status == "Scheduled" && a.dentistID == na.DentistID && a.date == date && a.start == na.StartTime {
			return 0, ErrSlotTaken
		}
	}
	m.nextID++
	m.appointments = append(m.appointments, &memAppointment{
		id: m.nextID, dentistID: na.DentistID, patientID: na.PatientID,
		date: date, start: na.StartTime, end: na.EndTime, reason: na.Reason, status: "Scheduled",
	})
	return m.nextID, nil
}

func (m *memoryStore) CancelOnDate(_ context.Context, patientID int64, day time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, a := range m.appointments {
		if a.patientID == patientID && a.date == day.Format(dateLayout) && a.status == "Scheduled" {
			a.status = "Cancelled"
			n++
		}
	}
	return n, nil
}

func (m *memoryStore) ListUpcoming(_ context.Context, patientID int64, from time.Time) ([]Upcoming, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	names := map[int64]string{}
	for _, d := range m.dentists {
		names[d.ID] = d.Name
	}
	var out []Upcoming
	for _, a := range m.appointments {
		if a.patientID != patientID || a.status != "Scheduled" || a.date < from.Format(dateLayout) {
			continue
		}
		d, _ := time.Parse(dateLayout, a.date)
		out = append(out, Upcoming{ID: a.id, Date: d, StartTime: a.start, EndTime: a.end, DentistName: names[a.dentistID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].Date.Equal(out[j].Date) {
			return out[i].Date.Before(out[j].Date)
		}
		return out[i].StartTime < out[j].StartTime
	})
	return out, nil
}

// fill books every canonical slot of every dentist on the day.
func (m *memoryStore) fill(day string) {
	for _, d := range m.dentists {
		for _, slot := range CanonicalSlots() {
			m.nextID++
			m.appointments = append(m.appointments, &memAppointment{
				id: m.nextID, dentistID: d.ID, patientID: 999, date: day, start: slot, status: "Scheduled",
			})
		}
	}
}

func (m *memoryStore) book(dentistID, patientID int64, day, start string) {
	m.nextID++
	m.appointments = append(m.appointments, &memAppointment{
		id: m.nextID, dentistID: dentistID, patientID: patientID, date: day, start: start, status: "Scheduled",
	})
}

type memoryPatients struct {
	byID map[int64]*patients.Patient
	err  error
}

func newMemoryPatients(ps ...*patients.Patient) *memoryPatients {
	m := &memoryPatients{byID: map[int64]*patients.Patient{}}
	for _, p := range ps {
		m.byID[p.ID] = p
	}
	return m
}

func (m *memoryPatients) GetByPhone(_ context.Context, phone string) (*patients.Patient, error) {
	if m.err != nil {
		return nil, m.err
	}
	for _, p := range m.byID {
		if p.Phone == phone {
			return p, nil
		}
	}
	return nil, patients.ErrPatientNotFound
}

func (m *memoryPatients) GetByID(_ context.Context, id int64) (*patients.Patient, error) {
	if m.err != nil {
		return nil, m.err
	}
	if p, ok := m.byID[id]; ok {
		return p, nil
	}
	return nil, patients.ErrPatientNotFound
}

type recordingNotifier struct {
	mu   sync.Mutex
	sent []notify.Notification
}

func (r *recordingNotifier) Dispatch(_ context.Context, n notify.Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}
