// Package dispatch implements the request-level control loop: reserve a
// credential, call the matching provider client, classify the outcome,
// and retry within a bounded fixed-delay policy.
package dispatch
