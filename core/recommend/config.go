package recommend

import "fmt"

// Thresholds holds every numeric cut-off used by the engine. Fields suffixed
// with Certified apply to trainsets with certificate or job card data.
type Thresholds struct {
	CriticalAvailability          float64 `json:"critical_availability"`
	CriticalAvailabilityCertified float64 `json:"critical_availability_certified"`
	SevereAvailabilityMargin      float64 `json:"severe_availability_margin"`
	CriticalJobPriority           int     `json:"critical_job_priority"`
	CriticalMileage               float64 `json:"critical_mileage"`

	DegradedMileage                  float64 `json:"degraded_mileage"`
	DegradedMileageAvailability      float64 `json:"degraded_mileage_availability"`
	MaintenanceAvailability          float64 `json:"maintenance_availability"`
	MaintenanceAvailabilityCertified float64 `json:"maintenance_availability_certified"`
	ServiceIntervalMileage           float64 `json:"service_interval_mileage"`
	MaxOpenJobCards                  int     `json:"max_open_job_cards"`

	ReadyAvailability           float64 `json:"ready_availability"`
	ReadyBranding               int     `json:"ready_branding"`
	ReadyLowMileageAvailability float64 `json:"ready_low_mileage_availability"`
	ReadyLowMileage             float64 `json:"ready_low_mileage"`
	ReadyBrandingCertified      int     `json:"ready_branding_certified"`

	StandbyGoodAvailability float64 `json:"standby_good_availability"`

	CleaningDays            int     `json:"cleaning_days"`
	CleaningDaysCertified   int     `json:"cleaning_days_certified"`
	LowBranding             int     `json:"low_branding"`
	LowBrandingAvailability float64 `json:"low_branding_availability"`
	CertificateWarningDays  int     `json:"certificate_warning_days"`
	WearMileage             float64 `json:"wear_mileage"`
}

// DefaultThresholds returns the production cut-offs.
func DefaultThresholds() Thresholds {
	return Thresholds{
		CriticalAvailability:          60,
		CriticalAvailabilityCertified: 75,
		SevereAvailabilityMargin:      20,
		CriticalJobPriority:           4,
		CriticalMileage:               65000,

		DegradedMileage:                  50000,
		DegradedMileageAvailability:      85,
		MaintenanceAvailability:          80,
		MaintenanceAvailabilityCertified: 90,
		ServiceIntervalMileage:           45000,
		MaxOpenJobCards:                  2,

		ReadyAvailability:           95,
		ReadyBranding:               8,
		ReadyLowMileageAvailability: 90,
		ReadyLowMileage:             40000,
		ReadyBrandingCertified:      7,

		StandbyGoodAvailability: 85,

		CleaningDays:            10,
		CleaningDaysCertified:   5,
		LowBranding:             3,
		LowBrandingAvailability: 70,
		CertificateWarningDays:  60,
		WearMileage:             18000,
	}
}

// SetDefaults replaces every zero field with its default value.
func (t *Thresholds) SetDefaults() {
	d := DefaultThresholds()
	setF := func(v *float64, def float64) {
		if *v == 0 {
			*v = def
		}
	}
	setI := func(v *int, def int) {
		if *v == 0 {
			*v = def
		}
	}
	setF(&t.CriticalAvailability, d.CriticalAvailability)
	setF(&t.CriticalAvailabilityCertified, d.CriticalAvailabilityCertified)
	setF(&t.SevereAvailabilityMargin, d.SevereAvailabilityMargin)
	setI(&t.CriticalJobPriority, d.CriticalJobPriority)
	setF(&t.CriticalMileage, d.CriticalMileage)
	setF(&t.DegradedMileage, d.DegradedMileage)
	setF(&t.DegradedMileageAvailability, d.DegradedMileageAvailability)
	setF(&t.MaintenanceAvailability, d.MaintenanceAvailability)
	setF(&t.MaintenanceAvailabilityCertified, d.MaintenanceAvailabilityCertified)
	setF(&t.ServiceIntervalMileage, d.ServiceIntervalMileage)
	setI(&t.MaxOpenJobCards, d.MaxOpenJobCards)
	setF(&t.ReadyAvailability, d.ReadyAvailability)
	setI(&t.ReadyBranding, d.ReadyBranding)
	setF(&t.ReadyLowMileageAvailability, d.ReadyLowMileageAvailability)
	setF(&t.ReadyLowMileage, d.ReadyLowMileage)
	setI(&t.ReadyBrandingCertified, d.ReadyBrandingCertified)
	setF(&t.StandbyGoodAvailability, d.StandbyGoodAvailability)
	setI(&t.CleaningDays, d.CleaningDays)
	setI(&t.CleaningDaysCertified, d.CleaningDaysCertified)
	setI(&t.LowBranding, d.LowBranding)
	setF(&t.LowBrandingAvailability, d.LowBrandingAvailability)
	setI(&t.CertificateWarningDays, d.CertificateWarningDays)
	setF(&t.WearMileage, d.WearMileage)
}

// Validate checks that percentages and branding levels are in range and that
// the mileage cut-offs are ordered.
func (t Thresholds) Validate() error {
	pcts := map[string]float64{
		"critical_availability":              t.CriticalAvailability,
		"critical_availability_certified":    t.CriticalAvailabilityCertified,
		"degraded_mileage_availability":      t.DegradedMileageAvailability,
		"maintenance_availability":           t.MaintenanceAvailability,
		"maintenance_availability_certified": t.MaintenanceAvailabilityCertified,
		"ready_availability":                 t.ReadyAvailability,
		"ready_low_mileage_availability":     t.ReadyLowMileageAvailability,
		"standby_good_availability":          t.StandbyGoodAvailability,
		"low_branding_availability":          t.LowBrandingAvailability,
	}
	for name, v := range pcts {
		if v < 0 || v > 100 {
			return fmt.Errorf("engine.%s must be within [0,100], got %v", name, v)
		}
	}
	for name, v := range map[string]int{
		"ready_branding":           t.ReadyBranding,
		"ready_branding_certified": t.ReadyBrandingCertified,
		"low_branding":             t.LowBranding,
	} {
		if v < 1 || v > 10 {
			return fmt.Errorf("engine.%s must be within [1,10], got %d", name, v)
		}
	}
	if t.CriticalMileage <= t.DegradedMileage {
		return fmt.Errorf("engine.critical_mileage must exceed engine.degraded_mileage")
	}
	if t.CleaningDays < 0 || t.CleaningDaysCertified < 0 || t.CertificateWarningDays < 0 {
		return fmt.Errorf("engine day thresholds must not be negative")
	}
	return nil
}
