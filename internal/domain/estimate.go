package domain

import (
	"math"
	"time"
)

// secondsPerYear uses a 365.25-day year.
const secondsPerYear = 365.25 * 24 * 60 * 60

// MinWindowYears is the shortest history Estimate will derive rates from.
const MinWindowYears = 1.0

// frequencyTable counts events per region and intensity.
type frequencyTable map[string]map[string]int

// WindowYears returns the span in years between the earliest event and now.
// An empty sequence yields zero.
func WindowYears(events []EarthquakeEvent, now time.Time) float64 {
	earliest := now
	for _, e := range events {
		if e.Time.Before(earliest) {
			earliest = e.Time
		}
	}
	// Unix seconds avoid time.Duration overflow on century-long catalogs.
	secs := float64(now.Unix()-earliest.Unix()) + float64(now.Nanosecond()-earliest.Nanosecond())/1e9
	return secs / secondsPerYear
}

// Estimate derives, for every (region, intensity) pair, the probability of at
// least one occurrence within each horizon, modelling occurrences as a
// homogeneous Poisson process: P(t) = 1 - e^(-λt) with λ = count / window.
// Percentages are rounded half-up to two decimals. Histories shorter than
// MinWindowYears produce an empty result.
func Estimate(events []EarthquakeEvent, now time.Time) AnalysisResult {
	result := AnalysisResult{}

	totalYears := WindowYears(events, now)
	if totalYears < MinWindowYears {
		return result
	}

	for region, byIntensity := range countEvents(events) {
		probs := make(IntensityProbabilities, len(byIntensity))
		for intensity, count := range byIntensity {
			rate := float64(count) / totalYears
			byHorizon := make(HorizonProbabilities, len(Horizons))
			for _, h := range Horizons {
				byHorizon[h.Label] = percent(1 - math.Exp(-rate*h.Years))
			}
			probs[intensity] = byHorizon
		}
		result[region] = probs
	}
	return result
}

func countEvents(events []EarthquakeEvent) frequencyTable {
	table := frequencyTable{}
	for _, e := range events {
		byIntensity, ok := table[e.Region]
		if !ok {
			byIntensity = map[string]int{}
			table[e.Region] = byIntensity
		}
		byIntensity[e.Intensity]++
	}
	return table
}

// percent converts a probability to a percentage with two decimals.
func percent(p float64) float64 {
	return math.Round(p*10000) / 100
}
