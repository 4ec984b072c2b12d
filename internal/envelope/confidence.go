package envelope

// ScoreToTier converts a quality score (0.0-1.0) to a confidence tier.
//
// Tier mapping:
//   - 0.95+ -> high (deterministic engine ops, AST matches)
//   - 0.70-0.94 -> medium (heuristic line-scan results)
//   - <0.70 -> low (partial or degraded results)
func ScoreToTier(score float64) ConfidenceTier {
	switch {
	case score >= 0.95:
		return TierHigh
	case score >= 0.70:
		return TierMedium
	default:
		return TierLow
	}
}
