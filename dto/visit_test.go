package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.pilab.hu/clinic/domain"
)

func TestVisitForm_Build(t *testing.T) {
	now := time.Date(2024, 3, 5, 9, 41, 27, 0, time.UTC)

	t.Run("blank vitals become null and date defaults to now", func(t *testing.T) {
		req, err := VisitForm{PatientID: "12", Diagnosis: "Flu"}.Build("7", now)
		require.NoError(t, err)
		assert.Equal(t, domain.ID("7"), req.DoctorID)
		assert.Nil(t, req.HeightCm)
		assert.Nil(t, req.Pulse)

		body, err := json.Marshal(req)
		require.NoError(t, err)
		var m map[string]interface{}
		require.NoError(t, json.Unmarshal(body, &m))
		assert.Equal(t, float64(12), m["patientId"])
		assert.Equal(t, float64(7), m["doctorId"])
		assert.Equal(t, "2024-03-05T09:41:00", m["visitDate"])
		assert.Nil(t, m["heightCm"])
		assert.Contains(t, m, "temperature")
	})

	t.Run("numbers are parsed", func(t *testing.T) {
		req, err := VisitForm{
			PatientID:   "3",
			VisitDate:   "2024-01-02T10:30",
			HeightCm:    "180.5",
			WeightKg:    "80",
			Pulse:       "72",
			Temperature: "36.6",
		}.Build("7", now)
		require.NoError(t, err)
		assert.Equal(t, 180.5, *req.HeightCm)
		assert.Equal(t, 80.0, *req.WeightKg)
		assert.Equal(t, 72, *req.Pulse)
		assert.Equal(t, 36.6, *req.Temperature)
		assert.Equal(t, "2024-01-02 10:30", req.VisitDate.String())
	})

	t.Run("patient is required", func(t *testing.T) {
		_, err := VisitForm{}.Build("7", now)
		assert.EqualError(t, err, "patientId is required")
	})

	t.Run("invalid pulse", func(t *testing.T) {
		_, err := VisitForm{PatientID: "3", Pulse: "fast"}.Build("7", now)
		assert.Error(t, err)
	})

	t.Run("invalid date", func(t *testing.T) {
		_, err := VisitForm{PatientID: "3", VisitDate: "yesterday"}.Build("7", now)
		assert.Error(t, err)
	})
}
