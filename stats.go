package main

import (
	"errors"
	"math"
)

// errNotEnoughSamples is returned by computeStats when fewer than two
// samples exist; the variance estimator divides by n-1.
var errNotEnoughSamples = errors.New("not enough samples for statistics")

// Report holds summary statistics over every sample seen so far.
type Report struct {
	N     int     `json:"samples"`
	Mu    float64 `json:"mu"`
	Sigma float64 `json:"sigma"`
	Rho   float64 `json:"rho"`
}

// computeStats recomputes mean, sample standard deviation and lag-1
// autocorrelation from scratch over the store's contents, visiting
// samples in append order. Two full passes: moments first, then the
// lagged cross-products.
//
// The lag-1 walk seeds prev with the mean, so the first sample's
// nonexistent predecessor contributes zero deviation. That boundary
// convention comes from the original accumulator loop and is kept
// as-is. A constant-valued series yields rho = NaN (0/0), same as the
// original.
func computeStats(s *Store) (Report, error) {
	n := s.Count()
	if n < 2 {
		return Report{N: n}, errNotEnoughSamples
	}

	var sum, sumsq float64
	for _, c := range s.chunks {
		for _, v := range c.times[:c.used] {
			f := float64(v)
			sum += f
			sumsq += f * f
		}
	}
	mu := sum / float64(n)
	sigma := math.Sqrt((sumsq - float64(n)*mu*mu) / float64(n-1))

	var top, sigma2 float64
	prev := mu
	for _, c := range s.chunks {
		for _, v := range c.times[:c.used] {
			f := float64(v)
			top += (f - mu) * (prev - mu)
			sigma2 += (prev - mu) * (prev - mu)
			prev = f
		}
	}

	return Report{N: n, Mu: mu, Sigma: sigma, Rho: top / sigma2}, nil
}
