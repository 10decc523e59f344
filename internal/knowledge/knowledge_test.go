package knowledge

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBase() *Base {
	return &Base{
		Hospital: Hospital{Name: "Sunrise Medical Center"},
		CommonSymptoms: map[string][]string{
			"Cardiology": {"chest pain", "palpitations"},
			"Neurology":  {"headache", "dizziness"},
			"Pulmonology": {"cough", "fever"},
		},
		Doctors: []Doctor{
			{Name: "Dr. Asha Menon", Specialty: "Cardiology", Experience: "18 years"},
			{Name: "Dr. Rohit Kulkarni", Specialty: "Cardiology", Experience: "11 years"},
			{Name: "Dr. Kavitha Rao", Specialty: "Neurology", Experience: "16 years"},
		},
	}
}

func TestLoadParsesClinicData(t *testing.T) {
	path := filepath.Join(t.TempDir(), "clinic.json")
	data := `{
		"hospital": {"name": "Sunrise Medical Center"},
		"common_symptoms": {"Cardiology": ["chest pain"]},
		"doctors": [{"name": "Dr. Asha Menon", "specialty": "Cardiology", "experience": "18 years"}]
	}`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	b, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "Sunrise Medical Center", b.Hospital.Name)
	assert.Equal(t, []string{"chest pain"}, b.CommonSymptoms["Cardiology"])
	require.Len(t, b.Doctors, 1)
	assert.Equal(t, "Dr. Asha Menon", b.Doctors[0].Name)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.json"))
	require.Error(t, err)
}

func TestMatchDepartments(t *testing.T) {
	b := testBase()

	assert.Equal(t, []string{"Cardiology"}, b.MatchDepartments("sharp CHEST PAIN since morning"))
	assert.Equal(t, []string{"Neurology", "Pulmonology"}, b.MatchDepartments("fever and a bad headache"))
	assert.Empty(t, b.MatchDepartments("itchy elbow"))
}

func TestDoctorsBySpecialty(t *testing.T) {
	b := testBase()

	docs := b.DoctorsBySpecialty("cardio")
	require.Len(t, docs, 2)
	assert.Equal(t, "Dr. Asha Menon", docs[0].Name)

	assert.Empty(t, b.DoctorsBySpecialty("dentistry"))
}

func TestDoctorsForDepartment(t *testing.T) {
	b := testBase()

	docs := b.DoctorsForDepartment("cardiology")
	require.Len(t, docs, 2)

	// Exact department match; a fragment is not enough.
	assert.Empty(t, b.DoctorsForDepartment("cardio"))
}

func TestRenderIncludesDepartmentsAndDoctors(t *testing.T) {
	rendered := testBase().Render()

	assert.Contains(t, rendered, "Sunrise Medical Center")
	assert.Contains(t, rendered, "Cardiology: chest pain, palpitations")
	assert.Contains(t, rendered, "Dr. Kavitha Rao")
}
