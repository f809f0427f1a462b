package booking

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfman30/locus-venue/internal/calendar"
)

var today = calendar.Date{Year: 2025, Month: 3, Day: 1}

func validForm() Form {
	d := calendar.Date{Year: 2025, Month: 3, Day: 10}
	return Form{
		Name:       "Jane Doe",
		Email:      "jane@example.com",
		Phone:      "416-555-0100",
		EventDate:  &d,
		EventType:  Wedding,
		GuestCount: 120,
	}
}

func TestGuestCountBoundaries(t *testing.T) {
	tests := []struct {
		count int
		ok    bool
	}{
		{0, false},
		{1, true},
		{200, true},
		{201, false},
		{-5, false},
	}
	for _, tt := range tests {
		f := validForm()
		f.GuestCount = tt.count
		err := f.Validate(200, today)
		if tt.ok {
			assert.NoError(t, err, "count %d", tt.count)
			continue
		}
		var verr *ValidationError
		require.True(t, errors.As(err, &verr), "count %d", tt.count)
		assert.Equal(t, "guestCount", verr.Field)
		assert.Equal(t, "Guest count must be between 1 and 200", verr.Message)
	}
}

func TestGuestCountUsesConfiguredBound(t *testing.T) {
	f := validForm()
	f.GuestCount = 131
	assert.Error(t, f.Validate(130, today))
	f.GuestCount = 130
	assert.NoError(t, f.Validate(130, today))
	assert.NoError(t, f.Validate(0, today), "zero bound falls back to the default")
}

func TestValidateFields(t *testing.T) {
	past := calendar.Date{Year: 2025, Month: 2, Day: 28}
	tests := []struct {
		name  string
		mut   func(*Form)
		field string
	}{
		{"missing name", func(f *Form) { f.Name = "  " }, "name"},
		{"bad email", func(f *Form) { f.Email = "jane" }, "email"},
		{"bad phone", func(f *Form) { f.Phone = "+1 416" }, "phone"},
		{"past date", func(f *Form) { f.EventDate = &past }, "eventDate"},
		{"unknown type", func(f *Form) { f.EventType = "Funeral" }, "eventType"},
		{"empty type", func(f *Form) { f.EventType = "" }, "eventType"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := validForm()
			tt.mut(&f)
			var verr *ValidationError
			require.True(t, errors.As(f.Validate(200, today), &verr))
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestEventDateOptionalAndTodayAllowed(t *testing.T) {
	f := validForm()
	f.EventDate = nil
	assert.NoError(t, f.Validate(200, today))

	d := today
	f.EventDate = &d
	assert.NoError(t, f.Validate(200, today))
}

func TestFormUnmarshalAcceptsLooseInput(t *testing.T) {
	var f Form
	err := json.Unmarshal([]byte(`{
		"name":"Jane","email":"jane@example.com","phone":"555",
		"eventDate":"Monday, March 10, 2025","eventType":"Social",
		"guestCount":"45","additionalNotes":"DJ"
	}`), &f)
	require.NoError(t, err)
	assert.Equal(t, 45, f.GuestCount)
	require.NotNil(t, f.EventDate)
	assert.Equal(t, "2025-03-10", f.EventDate.String())
	assert.Equal(t, Social, f.EventType)
	assert.Equal(t, "DJ", f.AdditionalNotes)

	var g Form
	require.NoError(t, json.Unmarshal([]byte(`{"eventDate":"2025-04-01","guestCount":12}`), &g))
	assert.Equal(t, 12, g.GuestCount)
	assert.Equal(t, "2025-04-01", g.EventDate.String())

	var h Form
	require.NoError(t, json.Unmarshal([]byte(`{"guestCount":""}`), &h))
	assert.Nil(t, h.EventDate)
	assert.Equal(t, 0, h.GuestCount)

	assert.Error(t, json.Unmarshal([]byte(`{"guestCount":"many"}`), &h))
	assert.Error(t, json.Unmarshal([]byte(`{"eventDate":"soon"}`), &h))
}

func TestFormatEventDate(t *testing.T) {
	d := calendar.Date{Year: 2025, Month: 3, Day: 10}
	assert.Equal(t, "Monday, March 10, 2025", FormatEventDate(&d))
	assert.Equal(t, "", FormatEventDate(nil))
}
