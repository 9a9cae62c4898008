// Package schedule runs the recommendation engine over a whole fleet
// snapshot and summarizes the outcome.
//
// A malformed trainset never aborts a run: it is left out of the
// recommendations and reported in Result.Errors. The scheduler persists
// nothing; callers store the result and update the fleet KPIs from the
// summary.
package schedule
