package sentiment

// Valence lexicon for financial headlines. Values follow the usual
// [-4, 4] scale before normalization into a compound score.
var lexicon = map[string]float64{
	// strongly directional market words
	"bullish":  3.0,
	"bearish":  -3.0,
	"soar":     2.8,
	"soars":    2.8,
	"crash":    -3.0,
	"crashes":  -3.0,
	"rally":    2.5,
	"rallies":  2.5,
	"surge":    2.5,
	"surges":   2.5,
	"plunge":   -2.5,
	"plunges":  -2.5,
	"tumble":   -2.4,
	"tumbles":  -2.4,
	"slump":    -2.2,
	"slumps":   -2.2,
	"rebound":  2.0,
	"rebounds": 2.0,
	"breakout": 2.2,
	"selloff":  -2.4,
	"sell-off": -2.4,

	// earnings and analyst language
	"beat":         2.0,
	"beats":        2.0,
	"miss":         -2.0,
	"misses":       -2.0,
	"upgrade":      2.2,
	"upgraded":     2.2,
	"downgrade":    -2.2,
	"downgraded":   -2.2,
	"outperform":   2.0,
	"underperform": -2.0,
	"buy":          1.5,
	"sell":         -1.5,
	"overweight":   1.6,
	"underweight":  -1.6,

	// fundamentals
	"profit":    1.8,
	"profits":   1.8,
	"loss":      -1.8,
	"losses":    -1.8,
	"growth":    1.5,
	"decline":   -1.5,
	"declines":  -1.5,
	"gain":      1.4,
	"gains":     1.4,
	"drop":      -1.4,
	"drops":     -1.4,
	"rise":      1.3,
	"rises":     1.3,
	"fall":      -1.3,
	"falls":     -1.3,
	"jump":      1.6,
	"jumps":     1.6,
	"record":    1.2,
	"strong":    1.4,
	"weak":      -1.4,
	"beat-down": -1.8,
	"robust":    1.4,
	"dividend":  0.8,
	"buyback":   1.2,
	"layoffs":   -1.6,
	"lawsuit":   -1.5,
	"probe":     -1.2,
	"fraud":     -2.6,
	"default":   -2.4,
	"bankrupt":  -3.0,

	// macro and risk words
	"recession":   -2.2,
	"inflation":   -1.0,
	"tightening":  -0.8,
	"easing":      0.8,
	"stimulus":    1.2,
	"uncertainty": -1.0,
	"risk":        -0.6,
	"fear":        -1.4,
	"optimism":    1.4,
	"pessimism":   -1.4,
	"volatile":    -0.5,
	"volatility":  -0.5,
}

// negations flip the valence of the following sentiment word.
var negations = map[string]bool{
	"not":     true,
	"no":      true,
	"never":   true,
	"without": true,
	"hardly":  true,
	"isn't":   true,
	"wasn't":  true,
	"doesn't": true,
	"didn't":  true,
	"won't":   true,
	"cannot":  true,
	"can't":   true,
}

// boosters scale the valence of the following sentiment word.
var boosters = map[string]float64{
	"very":          0.293,
	"extremely":     0.293,
	"hugely":        0.293,
	"massively":     0.293,
	"significantly": 0.293,
	"sharply":       0.293,
	"slightly":      -0.293,
	"somewhat":      -0.293,
	"marginally":    -0.293,
}
