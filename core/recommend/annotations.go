package recommend

import (
	"fmt"
	"math"
	"time"
)

// annotate appends risk factors that hold regardless of the chosen status.
func (ev *evaluation) annotate(v *verdict) {
	t, th := ev.t, ev.th

	limit := th.CleaningDays
	if ev.certified {
		limit = th.CleaningDaysCertified
	}
	if days := daysSince(t.LastCleaning, ev.now); days > limit {
		v.addRisk(fmt.Sprintf("Extended cleaning interval (%d days since last cleaning)", days))
		if v.priority < 10 {
			v.priority++
		}
	}

	if t.BrandingPriority <= th.LowBranding && t.AvailabilityPercentage < th.LowBrandingAvailability {
		v.addRisk("Low-priority train with declining performance")
	}

	for _, c := range t.FitnessCertificates {
		if c.Expired(ev.now) {
			continue
		}
		left := daysUntil(c.ExpiryDate, ev.now)
		if left > th.CertificateWarningDays {
			continue
		}
		label := "Certificate"
		if c.Type != "" {
			label = fmt.Sprintf("Certificate (%s)", c.Type)
		}
		v.addRisk(fmt.Sprintf("%s expires in %d days", label, left))
	}

	if ev.certified {
		if t.Mileage > th.WearMileage {
			v.addRisk("High mileage - increased wear risk")
		}
		if t.Mileage > th.CriticalMileage {
			v.addRisk("Service interval exceeded")
		}
	}
}

// daysSince returns the number of whole days elapsed from then to now.
func daysSince(then, now time.Time) int {
	d := now.Sub(then)
	if d <= 0 {
		return 0
	}
	return int(d.Hours() / 24)
}

// daysUntil returns the number of started days from now to then.
func daysUntil(then, now time.Time) int {
	d := then.Sub(now)
	if d <= 0 {
		return 0
	}
	return int(math.Ceil(d.Hours() / 24))
}
