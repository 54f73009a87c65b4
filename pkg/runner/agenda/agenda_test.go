package agenda

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fatih/color"

	"tableflip.dev/agenda/pkg/api"
	"tableflip.dev/agenda/pkg/app"
	"tableflip.dev/agenda/pkg/entity"
)

var now = time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)

func TestAgendaMonth(t *testing.T) {
	color.NoColor = true
	m := api.NewMemory()
	m.AddTask(entity.Task{Title: "Pay rent", DueDate: entity.At(time.Date(2026, time.March, 28, 12, 0, 0, 0, time.UTC))})
	m.AddAppointment(entity.Appointment{
		Title:     "Dentist",
		StartTime: entity.Timestamp{Time: time.Date(2026, time.March, 12, 10, 0, 0, 0, time.UTC)},
		EndTime:   entity.Timestamp{Time: time.Date(2026, time.March, 12, 11, 0, 0, 0, time.UTC)},
	})
	svc := app.NewService(m, nil, app.WithLocation(time.UTC), app.WithClock(func() time.Time { return now }))

	out := &bytes.Buffer{}
	a := Agenda{Service: svc, On: now, Days: 7, Month: true, Out: out}
	if err := a.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"March", "Thursday 12 March", "10:00-11:00", "Dentist", "Saturday 28 March", "Pay rent"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("missing %q in:\n%s", want, out)
		}
	}

	out.Reset()
	a = Agenda{Service: svc, On: now, Days: 7, Out: out}
	if err := a.Do(context.Background()); err != nil {
		t.Fatal(err)
	}
	if strings.Contains(out.String(), "Pay rent") {
		t.Errorf("a week from the 10th should not reach the 28th:\n%s", out)
	}
}
