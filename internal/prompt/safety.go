package prompt

// Clinical safety constants injected into the system instruction.
// Wording is operator-facing and intentionally explicit.

type contraindication struct {
	Drug   string
	Reason string
}

var catContraindicatedDrugs = []contraindication{
	{
		Drug:   "Permethrin",
		Reason: "Extremely toxic to cats: tremors, seizures, death. Canine spot-on flea products containing permethrin must never be applied to cats.",
	},
	{
		Drug:   "Acetaminophen (Paracetamol)",
		Reason: "Cats lack glucuronidation capacity and cannot metabolize acetaminophen; even tiny doses cause methemoglobinemia and hepatic necrosis.",
	},
	{
		Drug:   "High-dose Aspirin",
		Reason: "Aspirin half-life in cats is 38-72 hours (8 hours in dogs). Routine canine dosing accumulates to toxicity; only very low doses under veterinary supervision.",
	},
}

var mdr1Breeds = []string{
	"Collie",
	"Shetland Sheepdog",
	"Australian Shepherd",
	"Old English Sheepdog",
	"Border Collie",
	"German Shepherd (some lines)",
	"Long-haired Whippet",
	"Silken Windhound",
}

var mdr1Drugs = []string{
	"Ivermectin", "Milbemycin", "Moxidectin", "Loperamide", "Acepromazine",
}

const mdr1Description = "MDR1 (ABCB1) mutations disable P-glycoprotein, so these drugs are not pumped out of the brain and can cause severe neurotoxicity (tremors, blindness, coma, death)."

var ckdAvoidDrugs = []string{"NSAIDs (meloxicam, carprofen, deracoxib)"}

var ckdAdjustDrugs = []string{"Aminoglycosides", "ACE inhibitors", "Renally excreted antibiotics"}

const ckdDescription = "Patients with chronic kidney disease must avoid NSAIDs (worsen renal injury) and need dose adjustment for renally excreted drugs."

const disclaimer = "AI recommendations are for licensed veterinarians only and never replace clinical judgment. All treatment decisions must combine physical examination, laboratory results and the individual patient."
