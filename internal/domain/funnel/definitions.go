package funnel

// Authored funnels for the German home-service verticals we ship with.
// Copy is customer-facing German; field names and option ids stay English
// because they end up as CRM payload keys.

func intPtr(v int) *int { return &v }

// Defaults returns the production funnel definitions.
func Defaults() []*Definition {
	return []*Definition{ElektrikerFunnel(), BarbershopFunnel()}
}

// ElektrikerFunnel qualifies project requests for electricians.
func ElektrikerFunnel() *Definition {
	return &Definition{
		ID:           "elektriker-projekt",
		Name:         "Elektriker Projektanfrage",
		TriggerLabel: "Kostenloses Angebot anfordern",
		Scoring:      Scoring{Hot: 80, Warm: 50, Potential: 25},
		Steps: []Step{
			{
				ID:    "projektart",
				Type:  StepSingleChoice,
				Title: "Um welches Projekt geht es?",
				Field: "projectType",
				Options: []Option{
					{ID: "neubau", Icon: "🏗️", Label: "Neubau / Kernsanierung", Score: 30, Tag: "grossprojekt"},
					{ID: "smarthome", Icon: "🏠", Label: "Smart Home Installation", Score: 25, Tag: "smarthome"},
					{ID: "wallbox", Icon: "🔌", Label: "Wallbox / E-Mobilität", Score: 25, Tag: "emobility"},
					{ID: "modernisierung", Icon: "⚡", Label: "Elektrik modernisieren", Score: 20},
					{ID: "reparatur", Icon: "🔧", Label: "Reparatur / Störung", Score: 10},
				},
			},
			{
				ID:             "leistungen",
				Type:           StepMultiChoice,
				Title:          "Welche Leistungen benötigen Sie?",
				Subtitle:       "Mehrfachauswahl möglich",
				Field:          "services",
				MinSelections:  intPtr(1),
				BonusThreshold: 3,
				BonusScore:     15,
				Options: []Option{
					{ID: "unterverteilung", Icon: "🗄️", Label: "Unterverteilung / Sicherungskasten", Score: 10},
					{ID: "beleuchtung", Icon: "💡", Label: "Beleuchtung", Score: 5},
					{ID: "steckdosen", Icon: "🔲", Label: "Steckdosen & Schalter", Score: 5},
					{ID: "netzwerk", Icon: "🌐", Label: "Netzwerk / Datenleitungen", Score: 10},
					{ID: "pv", Icon: "☀️", Label: "Photovoltaik-Anbindung", Score: 15, Tag: "pv"},
				},
			},
			{
				ID:    "rahmen",
				Type:  StepTwoQuestions,
				Title: "Zeitrahmen und Budget",
				Questions: []Question{
					{
						Field:  "timeline",
						Prompt: "Wann soll das Projekt starten?",
						Options: []Option{
							{ID: "asap", Label: "So schnell wie möglich", Score: 30, Tag: "dringend"},
							{ID: "1-3-monate", Label: "In 1–3 Monaten", Score: 20},
							{ID: "3-6-monate", Label: "In 3–6 Monaten", Score: 10},
							{ID: "research", Label: "Ich informiere mich nur", Score: 0},
						},
					},
					{
						Field:  "budget",
						Prompt: "Welches Budget planen Sie ein?",
						Options: []Option{
							{ID: "unter-2500", Label: "Bis 2.500 €", Score: 5},
							{ID: "2500-10000", Label: "2.500 – 10.000 €", Score: 15},
							{ID: "ueber-10000", Label: "Über 10.000 €", Score: 25, Tag: "premium"},
							{ID: "unklar", Label: "Noch unklar", Score: 5},
						},
						ShowIf: &ShowIf{Field: "timeline", NotIn: []string{"research"}},
					},
				},
			},
			{
				ID:    "kontakt",
				Type:  StepContact,
				Title: "Wohin dürfen wir Ihr Angebot senden?",
				ContactFields: []ContactField{
					{Name: "name", Label: "Ihr Name", Kind: InputText, Required: true},
					{Name: "email", Label: "E-Mail-Adresse", Kind: InputEmail, Required: true, Validate: ValidateEmail},
					{Name: "phone", Label: "Telefonnummer", Kind: InputTel, Required: true, Validate: ValidatePhone},
					{Name: "plz", Label: "Postleitzahl", Kind: InputText, Required: false, Validate: ValidatePLZ},
				},
				ConsentText: "Ich stimme zu, dass meine Angaben zur Bearbeitung meiner Anfrage gespeichert und verarbeitet werden. Hinweise in der Datenschutzerklärung.",
				ValueProps: []string{
					"Kostenloses und unverbindliches Angebot",
					"Rückmeldung innerhalb von 24 Stunden",
					"Meisterbetrieb mit Festpreisgarantie",
				},
			},
			{
				ID:       "qualifizierung",
				Type:     StepOptionalQualification,
				Title:    "Noch zwei kurze Fragen",
				Subtitle: "Optional – hilft uns bei der Vorbereitung",
				Questions: []Question{
					{
						Field:  "propertyType",
						Prompt: "Um welche Immobilie handelt es sich?",
						Options: []Option{
							{ID: "efh", Label: "Einfamilienhaus", Score: 10},
							{ID: "mfh", Label: "Mehrfamilienhaus", Score: 15, Tag: "gewerblich"},
							{ID: "wohnung", Label: "Wohnung", Score: 5},
							{ID: "gewerbe", Label: "Gewerbeobjekt", Score: 20, Tag: "gewerblich"},
						},
					},
					{
						Field:  "ownership",
						Prompt: "Sind Sie Eigentümer der Immobilie?",
						Options: []Option{
							{ID: "eigentuemer", Label: "Ja, Eigentümer", Score: 10},
							{ID: "mieter", Label: "Nein, Mieter", Score: 0},
							{ID: "verwalter", Label: "Ich bin Verwalter", Score: 5, Tag: "gewerblich"},
						},
						ShowIf: &ShowIf{Field: "propertyType", NotIn: []string{"gewerbe"}},
					},
				},
			},
		},
		Confirmation: Confirmation{
			TitleTemplate: "Vielen Dank, [Name]!",
			Message:       "Ihre Anfrage ist bei uns eingegangen. Wir melden uns innerhalb von 24 Stunden bei Ihnen.",
			NextSteps: []string{
				"Wir prüfen Ihre Angaben und bereiten Ihr Angebot vor.",
				"Ein Meister ruft Sie für Rückfragen an.",
				"Sie erhalten Ihr schriftliches Angebot per E-Mail.",
			},
			UrgentContact: "Bei Notfällen erreichen Sie uns rund um die Uhr unter 0800 123456.",
		},
	}
}

// BarbershopFunnel qualifies appointment requests for barbershops.
func BarbershopFunnel() *Definition {
	return &Definition{
		ID:           "barbershop-termin",
		Name:         "Barbershop Terminanfrage",
		TriggerLabel: "Termin anfragen",
		Scoring:      Scoring{Hot: 50, Warm: 30, Potential: 15},
		Steps: []Step{
			{
				ID:    "anlass",
				Type:  StepSingleChoice,
				Title: "Was darf es sein?",
				Field: "serviceType",
				Options: []Option{
					{ID: "haarschnitt", Icon: "✂️", Label: "Haarschnitt", Score: 10},
					{ID: "bart", Icon: "🧔", Label: "Bartpflege", Score: 10},
					{ID: "komplett", Icon: "💈", Label: "Komplettpaket", Score: 20, Tag: "komplett"},
					{ID: "event", Icon: "🤵", Label: "Hochzeit / Event", Score: 25, Tag: "event"},
				},
			},
			{
				ID:             "extras",
				Type:           StepMultiChoice,
				Title:          "Extras gefällig?",
				Field:          "extras",
				MinSelections:  intPtr(0),
				BonusThreshold: 2,
				BonusScore:     10,
				Options: []Option{
					{ID: "waschen", Label: "Waschen & Styling", Score: 5},
					{ID: "faerben", Label: "Färben / Tönen", Score: 10},
					{ID: "gesicht", Label: "Gesichtspflege", Score: 5},
				},
			},
			{
				ID:    "termin",
				Type:  StepTwoQuestions,
				Title: "Wann passt es Ihnen?",
				Questions: []Question{
					{
						Field:  "timeline",
						Prompt: "Wann möchten Sie kommen?",
						Options: []Option{
							{ID: "diese-woche", Label: "Diese Woche", Score: 20, Tag: "dringend"},
							{ID: "naechste-woche", Label: "Nächste Woche", Score: 10},
							{ID: "research", Label: "Nur umschauen", Score: 0},
						},
					},
					{
						Field:  "dayPreference",
						Prompt: "Welche Tage passen am besten?",
						Options: []Option{
							{ID: "werktags", Label: "Werktags", Score: 5},
							{ID: "samstag", Label: "Samstag", Score: 5},
							{ID: "egal", Label: "Flexibel", Score: 10},
						},
						ShowIf: &ShowIf{Field: "timeline", NotIn: []string{"research"}},
					},
				},
			},
			{
				ID:    "kontakt",
				Type:  StepContact,
				Title: "Wie erreichen wir Sie?",
				ContactFields: []ContactField{
					{Name: "name", Label: "Ihr Name", Kind: InputText, Required: true},
					{Name: "phone", Label: "Telefonnummer", Kind: InputTel, Required: true, Validate: ValidatePhone},
					{Name: "email", Label: "E-Mail-Adresse", Kind: InputEmail, Required: false, Validate: ValidateEmail},
				},
				ConsentText: "Ich stimme der Verarbeitung meiner Daten zur Terminvereinbarung zu.",
				ValueProps: []string{
					"Antwort meist innerhalb weniger Stunden",
					"Keine Wartezeit vor Ort",
				},
			},
		},
		Confirmation: Confirmation{
			TitleTemplate: "Danke, [Name]!",
			Message:       "Wir melden uns schnellstmöglich mit einem Terminvorschlag.",
			NextSteps: []string{
				"Wir prüfen freie Termine.",
				"Sie erhalten eine Bestätigung per Telefon oder E-Mail.",
			},
		},
	}
}
