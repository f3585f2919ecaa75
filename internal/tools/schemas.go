package tools

import "encoding/json"

var knowledgeSearchSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"query": {
			"type": "string",
			"description": "English search query, e.g. 'feline chronic kidney disease staging'"
		},
		"species": {
			"type": "string",
			"enum": ["dog", "cat", "rabbit", "avian", "reptile", "exotic"],
			"description": "Target species to scope the search"
		},
		"include_detail": {
			"type": "boolean",
			"description": "Return full article content instead of snippets"
		},
		"include_secondary_source": {
			"type": "boolean",
			"description": "Include external bibliographic results (PubMed). Defaults to true"
		},
		"max_results": {
			"type": "integer",
			"description": "Maximum results to return, default 8"
		}
	},
	"required": ["query"]
}`)

var drugInfoSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"drug_name": {
			"type": "string",
			"description": "Drug name, generic or trade"
		},
		"species": {
			"type": "string",
			"enum": ["dog", "cat", "rabbit", "avian", "reptile", "exotic"],
			"description": "Target species to filter dosing lines"
		},
		"check_interactions": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Concurrent drugs to check for interactions"
		}
	},
	"required": ["drug_name"]
}`)

var differentialDiagnosisSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"symptoms": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Presenting signs in English free text, e.g. ['vomiting', 'lethargy']"
		},
		"labs": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Laboratory abnormalities, e.g. ['azotemia', 'hyperkalemia']"
		},
		"species": {
			"type": "string",
			"enum": ["dog", "cat", "rabbit", "avian", "reptile", "exotic"],
			"description": "Species of the patient"
		},
		"exclude": {
			"type": "array",
			"items": {"type": "string"},
			"description": "Conditions to exclude from the ranking"
		}
	},
	"required": ["symptoms"]
}`)

var clinicalCalculatorSchema = json.RawMessage(`{
	"type": "object",
	"properties": {
		"calculator_type": {
			"type": "string",
			"enum": ["drug_dose", "fluid_rate", "energy_requirement", "toxicity", "iris_staging"],
			"description": "Which calculator to run"
		},
		"parameters": {
			"type": "object",
			"description": "Calculator-specific parameters, e.g. weight_kg, dose_mg_per_kg"
		}
	},
	"required": ["calculator_type", "parameters"]
}`)
