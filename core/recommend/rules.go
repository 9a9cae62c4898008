package recommend

import (
	"fmt"
	"math"

	"github.com/kilianp07/railfleet/core/model"
)

type rule struct {
	name  string
	apply func(*evaluation) (verdict, bool)
}

// cascade is ordered from the most to the least urgent rule.
var cascade = []rule{
	{name: "expired_certificate", apply: expiredCertificate},
	{name: "critical_availability", apply: criticalAvailability},
	{name: "critical_job_cards", apply: criticalJobCards},
	{name: "critical_mileage", apply: criticalMileage},
	{name: "maintenance", apply: degradation},
	{name: "ready", apply: highValueReady},
}

func expiredCertificate(ev *evaluation) (verdict, bool) {
	if len(ev.expired) == 0 {
		return verdict{}, false
	}
	reason := fmt.Sprintf("Fitness certificate expired on %s", ev.expired[0].ExpiryDate.Format("2006-01-02"))
	if len(ev.expired) > 1 {
		reason = fmt.Sprintf("%d fitness certificates expired", len(ev.expired))
	}
	return verdict{
		status:     model.StatusCritical,
		confidence: 0.98,
		priority:   10,
		reasoning:  []string{reason},
		risks:      []string{"Safety certificate expired - service prohibited"},
	}, true
}

func criticalAvailability(ev *evaluation) (verdict, bool) {
	limit := ev.th.CriticalAvailability
	if ev.certified {
		limit = ev.th.CriticalAvailabilityCertified
	}
	avail := ev.t.AvailabilityPercentage
	if avail >= limit {
		return verdict{}, false
	}
	v := verdict{
		status:     model.StatusCritical,
		confidence: 0.95,
		priority:   9,
		reasoning:  []string{fmt.Sprintf("Availability %.0f%% below critical threshold of %.0f%%", avail, limit)},
		risks:      []string{"Unreliable for passenger service"},
	}
	if avail < limit-ev.th.SevereAvailabilityMargin {
		v.confidence = 0.98
		v.priority = 10
	}
	return v, true
}

func criticalJobCards(ev *evaluation) (verdict, bool) {
	if ev.criticalJobs == 0 {
		return verdict{}, false
	}
	v := verdict{
		status:     model.StatusCritical,
		confidence: 0.85,
		priority:   8,
		reasoning:  []string{fmt.Sprintf("%d critical job card(s) open (priority >= %d)", ev.criticalJobs, ev.th.CriticalJobPriority)},
		risks:      []string{"Critical maintenance pending"},
	}
	if ev.criticalJobs > 1 {
		v.confidence = 0.9
	}
	return v, true
}

// criticalMileage only triggers on the absolute-threshold path. With
// certificate data the mileage is reported as a risk annotation instead.
func criticalMileage(ev *evaluation) (verdict, bool) {
	if ev.certified || ev.t.Mileage <= ev.th.CriticalMileage {
		return verdict{}, false
	}
	return verdict{
		status:     model.StatusCritical,
		confidence: 0.98,
		priority:   10,
		reasoning:  []string{fmt.Sprintf("Extremely high mileage (%.0f km)", ev.t.Mileage)},
		risks:      []string{"Mechanical failure risk", "Service interval exceeded"},
	}, true
}

// degradation sends the trainset to maintenance when any degradation signal
// is present. Confidence and priority grow with the number of co-occurring
// signals.
func degradation(ev *evaluation) (verdict, bool) {
	t, th := ev.t, ev.th
	var reasons []string
	if t.Mileage > th.DegradedMileage && t.AvailabilityPercentage < th.DegradedMileageAvailability {
		reasons = append(reasons, fmt.Sprintf("High mileage (%.0f km) with reduced availability (%.0f%%)", t.Mileage, t.AvailabilityPercentage))
	}
	if t.AvailabilityPercentage < th.MaintenanceAvailability {
		reasons = append(reasons, fmt.Sprintf("Availability %.0f%% below maintenance threshold of %.0f%%", t.AvailabilityPercentage, th.MaintenanceAvailability))
	}
	if t.Mileage > th.ServiceIntervalMileage {
		reasons = append(reasons, fmt.Sprintf("Mileage %.0f km past service interval of %.0f km", t.Mileage, th.ServiceIntervalMileage))
	}
	if ev.openJobs > th.MaxOpenJobCards {
		reasons = append(reasons, fmt.Sprintf("%d open job cards awaiting completion", ev.openJobs))
	}
	if ev.certified && t.AvailabilityPercentage < th.MaintenanceAvailabilityCertified {
		reasons = append(reasons, fmt.Sprintf("Availability %.0f%% below certified service level of %.0f%%", t.AvailabilityPercentage, th.MaintenanceAvailabilityCertified))
	}
	if len(reasons) == 0 {
		return verdict{}, false
	}
	extra := float64(len(reasons) - 1)
	v := verdict{
		status:     model.StatusMaintenance,
		confidence: math.Min(0.75+0.05*extra, 0.9),
		priority:   6 + int(math.Min(extra, 2)),
		reasoning:  reasons,
	}
	if ev.openJobs > th.MaxOpenJobCards {
		v.addRisk("Maintenance backlog")
	}
	return v, true
}

func highValueReady(ev *evaluation) (verdict, bool) {
	t, th := ev.t, ev.th
	excellent := fmt.Sprintf("Excellent performance (%.0f%% availability)", t.AvailabilityPercentage)
	branding := fmt.Sprintf("High branding priority (%d/10)", t.BrandingPriority)
	switch {
	case t.AvailabilityPercentage >= th.ReadyAvailability && t.BrandingPriority >= th.ReadyBranding:
		reasons := []string{excellent, branding}
		if t.Mileage < th.ReadyLowMileage {
			reasons = append(reasons, fmt.Sprintf("Low mileage (%.0f km)", t.Mileage))
		}
		return verdict{status: model.StatusReady, confidence: 0.95, priority: 9, reasoning: reasons}, true
	case t.AvailabilityPercentage >= th.ReadyLowMileageAvailability && t.Mileage < th.ReadyLowMileage:
		return verdict{
			status:     model.StatusReady,
			confidence: 0.9,
			priority:   8,
			reasoning:  []string{excellent, fmt.Sprintf("Low mileage (%.0f km)", t.Mileage)},
		}, true
	case ev.certified && t.BrandingPriority > th.ReadyBrandingCertified:
		// Earlier rules have already ruled out expired certificates and
		// critical job cards.
		return verdict{
			status:     model.StatusReady,
			confidence: 0.8,
			priority:   8,
			reasoning:  []string{branding, "No unresolved critical issues"},
		}, true
	}
	return verdict{}, false
}

func standby(ev *evaluation) verdict {
	avail := ev.t.AvailabilityPercentage
	if avail >= ev.th.StandbyGoodAvailability {
		return verdict{
			status:     model.StatusStandby,
			confidence: 0.85,
			priority:   5,
			reasoning:  []string{fmt.Sprintf("Good availability (%.0f%%), suitable as operational reserve", avail)},
		}
	}
	return verdict{
		status:     model.StatusStandby,
		confidence: 0.65,
		priority:   4,
		reasoning:  []string{"Meets minimum service requirements"},
	}
}
