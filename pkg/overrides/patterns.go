package overrides

import (
	"regexp"

	"github.com/modguard/modguard/pkg/risk"
)

// Blocklist pattern categories. Category order inside the blocklist only
// matters for readability; any match is terminal. All tables are read-only
// after package init and safely shared across workers.

// Severe threats or wishes of harm.
var threatPatterns = compileAll(
	`(?i)\b(i wish|hope)\s(you|he|she|they)\s(die|dies|died)\b`,
	`(?i)\b(kill\syour\s?self|k\s?y\s?s)\b`,
)

// Vulgar or obscene sexual references.
var obscenePatterns = compileAll(
	`(?i)\b(his|my|your)\s(third|3rd)\s(leg)\b`,
)

// Insults, humiliation, and social attacks, including common profanity.
var insultPatterns = compileAll(
	`(?i)\b(i wish|hope)\s(you|he|she|they)\b.*?\b(humiliating|fail|suffer)\b`,
	`(?i)\b(idiot|moron|stupid|dumb|loser|pathetic|bitch|fuck)\b`,
)

// Veiled insults and passive-aggression.
var passiveAggressivePatterns = compileAll(
	`(?i)(?:bless\syour\s(little\s)?heart)`,
	`(?i)(?:i'm\ssure\syou\sthink)`,
	`(?i)(?:must\sbe\snice\sto\sbe)`,
)

// Dog whistles and coded hate speech. Numeric codes are matched
// case-sensitively on purpose.
var dogWhistlePatterns = compileAll(
	`\b(13/52|13/90)\b`,
	`(?i)\b(globalist\sagenda)\b`,
)

// Glorification of violence.
var glorificationPatterns = compileAll(
	`(?i)\b(got\swhat\s(he|she|they)\sdeserved)\b`,
	`(?i)\b(is\sa\shero\sfor\swhat\s(he|she)\sdid)\b`,
)

// Subtle self-harm encouragement.
var subtleThreatPatterns = compileAll(
	`(?i)\b(world\swould\sbe\sbetter\swithout\syou)\b`,
	`(?i)\b(nobody\swould\seven\snotice\sif\syou\swere\sgone)\b`,
)

// Identity-based insults without slurs.
var identityAttackPatterns = compileAll(
	`(?i)\b(of\scourse\sa\s(woman|man)\swould)\b`,
	`(?i)\b(typical\s(french|american|german|etc)\sbehavior)\b`,
)

// Spam and malicious links.
var spamPatterns = compileAll(
	`(?i)\b(free\sfollowers|buy\sfollwers|crypto\sgains)\b`,
	`(?i)(bit\.ly/|tinyurl\.com/)`,
)

// Safelist vocabulary. The general safelist is a cross product of
// violence-adjacent verbs applied to inanimate or abstract objects.
const (
	negativeVerbs   = `(killed|dead|destroyed|attacked|shot|poison|cancer|disease)`
	harmlessObjects = `(plant|battery|phone|car|game|server|computer|process|task|job|engine|ui|feature|logic)`
)

// Meta-discussion about words rather than abusive use of them. Runs before
// the blocklist: quoting a slur to discuss it must not classify as toxic.
var metaPatterns = compileAll(
	`(?i)\b(words\slike|the\sword|saying)\s(bitch|fuck|idiot|stupid)\b`,
)

var generalSafelistPatterns = compileAll(
	`(?i)\b(my\s)?`+negativeVerbs+`(\smy)?\s`+harmlessObjects+`\b`,
	`(?i)\b(the\s)?`+harmlessObjects+`(\sis|\swas)?\s(dead|died)\b`,
	`(?i)\b(kill the|killing the)\s(process|job|server|task)\b`,
	`(?i)\b(this|your)\s`+harmlessObjects+`\s(is|is\san)\s(absolute\s)?(cancer|poison|disease)\b`,
)

// defaultStages is the engine's ordered stage list. The general safelist is
// consulted only for MEDIUM/HIGH incoming tiers: a low-severity false signal
// is left as-is rather than forcibly downgraded.
var defaultStages = []Stage{
	{
		Name:     "meta_safelist",
		Patterns: metaPatterns,
		Action:   ForceSafe,
	},
	{
		Name: "blocklist",
		Patterns: concat(
			threatPatterns, obscenePatterns, insultPatterns,
			passiveAggressivePatterns, dogWhistlePatterns,
			glorificationPatterns, subtleThreatPatterns,
			identityAttackPatterns, spamPatterns,
		),
		Action: ForceToxic,
	},
	{
		Name:      "general_safelist",
		Patterns:  generalSafelistPatterns,
		Action:    ForceSafe,
		GateTiers: []risk.Tier{risk.Medium, risk.High},
	},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	compiled := make([]*regexp.Regexp, len(exprs))
	for i, expr := range exprs {
		compiled[i] = regexp.MustCompile(expr)
	}
	return compiled
}

func concat(groups ...[]*regexp.Regexp) []*regexp.Regexp {
	var all []*regexp.Regexp
	for _, g := range groups {
		all = append(all, g...)
	}
	return all
}
