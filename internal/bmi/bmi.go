// Package bmi derives body-mass-index metrics from weight and height.
package bmi

import "strconv"

type Verdict string

const (
	Underweight Verdict = "Underweight"
	Normal      Verdict = "Normal"
	Obese       Verdict = "Obese"
)

const (
	normalFrom = 18.5
	obeseFrom  = 30.0
)

// Derive returns the rounded BMI for weight (kg) and height (m) and its
// classification. A non-positive height yields a BMI of 0.
func Derive(weight, height float64) (float64, Verdict) {
	value := Compute(weight, height)
	return value, Classify(value)
}

// Compute returns weight / height² rounded to two decimal places.
func Compute(weight, height float64) float64 {
	if height <= 0 {
		return 0
	}
	return Round2(weight / (height * height))
}

// Round2 rounds x to two decimals, half to even on the exact binary value.
func Round2(x float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(x, 'f', 2, 64), 64)
	if err != nil {
		return x
	}
	return r
}

// Classify buckets a BMI value. Lower bounds are inclusive.
func Classify(value float64) Verdict {
	switch {
	case value < normalFrom:
		return Underweight
	case value < obeseFrom:
		return Normal
	default:
		return Obese
	}
}
