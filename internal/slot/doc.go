// Package slot implements the on-screen stacking slot registry.
// Independent devping processes coordinate their vertical panel
// positions through per-slot lock files whose content is the holder's
// pid, reclaiming slots left behind by crashed processes and reflowing
// to lower positions as earlier panels dismiss.
package slot
