// Package gate provides admission control for unit activation.
//
// A gate is a plain function from (unit, principal) to a Decision; no
// type hierarchy is required to plug in custom checks. Evaluation ANDs a
// unit's gates and short-circuits on the first denial.
//
// The evaluator never performs navigation itself: denial carries an
// optional redirect trigger key and the dispatcher decides what to do
// with it.
package gate
