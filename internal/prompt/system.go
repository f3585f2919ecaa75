// Package prompt assembles the system instruction from named fragments.
// Assembly is a pure function of (patient context, mode) so every
// fragment's inclusion condition can be tested in isolation.
package prompt

import (
	"fmt"
	"strings"

	"github.com/vetevidence/vetagent/internal/core"
)

const corePrinciples = `You are VetEvidence, a clinical decision support AI for licensed veterinarians.

## Core Principles
1. Evidence first: every answer must rest on literature or database results, never on unsupported speculation.
2. Cite sources: every key claim carries a source marker [N].
3. Species matter: always respect species differences; feline and canine pharmacology diverge sharply.
4. Safety first: any recommendation that could endanger the animal carries an explicit warning.
5. Professional humility: state uncertainty plainly when the evidence is thin.

## Answer Format
- Answer the question directly first.
- Present the supporting evidence.
- List citations using [1], [2], [3] markers.
- Suggest further diagnostics or referral where appropriate.`

const toolUsage = `## Tool Usage Rules
- On any clinical question, search the literature with knowledge_search before answering. Do not skip it.
- When a drug is involved, look it up with drug_info.
- Multiple tools may be called in one turn to gather complete information.
- If a tool returns nothing, say so honestly. Never fabricate results.
- The query parameter of knowledge_search must be English, because the indexed literature is English.
  Example: a question about feline diabetes management becomes query "feline diabetes mellitus management".`

const citationRules = `## Citation Format (strict)
- Every literature reference in the answer uses a numeric marker [1], [2], [3].
- Even a single source gets its [1] marker.
- End the answer with the full source list.
- When tools returned results, every key point carries its [N] marker.`

const noteSummaryInstructions = `## Structured Note Mode
You are generating a structured clinical note summary from the supplied
record. Produce a concise SOAP-structured summary (Subjective, Objective,
Assessment, Plan) of the patient context and the request. Do not invent
findings that are not in the record.`

// Build assembles the system instruction. Conditional safety blocks
// follow the species in the context: the feline contraindication list
// is dropped only when the patient is known to be canine, the MDR1
// block only when known feline, and the CKD block appears when a renal
// condition is present or no context is supplied at all.
func Build(pc *core.PatientContext, mode core.Mode) string {
	fragments := []string{corePrinciples}

	if mode == core.ModeNoteSummary {
		fragments = append(fragments, noteSummaryInstructions)
	} else {
		fragments = append(fragments, toolUsage)
	}
	fragments = append(fragments, citationRules)

	species := patientSpecies(pc)
	if safety := safetyBlocks(species, pc); safety != "" {
		fragments = append(fragments, safety)
	}

	if rendered := renderPatientContext(pc); rendered != "" {
		fragments = append(fragments, rendered)
	}

	fragments = append(fragments, "## Disclaimer\n"+disclaimer)

	return strings.Join(fragments, "\n\n")
}

func isFeline(species string) bool {
	return strings.Contains(species, "cat") || strings.Contains(species, "felin") || strings.Contains(species, "貓")
}

func isCanine(species string) bool {
	return strings.Contains(species, "dog") || strings.Contains(species, "canin") || strings.Contains(species, "犬")
}

func safetyBlocks(species string, pc *core.PatientContext) string {
	var blocks []string

	if !isCanine(species) {
		blocks = append(blocks, catContraindicationBlock())
	}
	if !isFeline(species) {
		blocks = append(blocks, mdr1Block())
	}
	if pc == nil || hasRenalCondition(pc) {
		blocks = append(blocks, ckdBlock())
	}

	if len(blocks) == 0 {
		return ""
	}
	return "## Critical Safety Rules\n\n" + strings.Join(blocks, "\n\n")
}

func catContraindicationBlock() string {
	var sb strings.Builder
	sb.WriteString("### Absolutely Contraindicated Drugs in Cats\n")
	for _, c := range catContraindicatedDrugs {
		sb.WriteString(fmt.Sprintf("- **%s**: %s\n", c.Drug, c.Reason))
	}
	return strings.TrimRight(sb.String(), "\n")
}

func mdr1Block() string {
	return fmt.Sprintf(
		"### MDR1 Breed Warning\nBreeds that may carry the MDR1 mutation: %s.\nHigh-risk drugs: %s.\n%s",
		strings.Join(mdr1Breeds, ", "),
		strings.Join(mdr1Drugs, ", "),
		mdr1Description,
	)
}

func ckdBlock() string {
	return fmt.Sprintf(
		"### Renal Patients\n%s\n- Avoid: %s\n- Adjust dose: %s",
		ckdDescription,
		strings.Join(ckdAvoidDrugs, ", "),
		strings.Join(ckdAdjustDrugs, ", "),
	)
}
