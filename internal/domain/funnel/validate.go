package funnel

import "fmt"

// Validate checks an authored definition. Definitions are trusted config,
// but author mistakes here (a showIf referencing a field that no step
// collects, thresholds out of order) would otherwise surface as silent
// mis-scoring at runtime, so the registry rejects them eagerly.
func (d *Definition) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidFunnel)
	}
	if len(d.Steps) == 0 {
		return fmt.Errorf("%w: funnel %q has no steps", ErrInvalidFunnel, d.ID)
	}

	if d.Scoring.Potential < 0 || d.Scoring.Warm < d.Scoring.Potential || d.Scoring.Hot < d.Scoring.Warm {
		return fmt.Errorf("%w: funnel %q scoring thresholds must satisfy hot >= warm >= potential >= 0 (got %d/%d/%d)",
			ErrInvalidFunnel, d.ID, d.Scoring.Hot, d.Scoring.Warm, d.Scoring.Potential)
	}

	// Fields collected by steps up to and including the current one.
	// ShowIf may only reference those; a forward reference would never
	// resolve and the question would be stuck visible.
	known := make(map[string]bool)

	for i, s := range d.Steps {
		if s.ID == "" {
			return fmt.Errorf("%w: funnel %q step %d has no id", ErrInvalidFunnel, d.ID, i)
		}

		switch s.Type {
		case StepSingleChoice:
			if s.Field == "" || len(s.Options) == 0 {
				return fmt.Errorf("%w: funnel %q step %q needs a field and options", ErrInvalidFunnel, d.ID, s.ID)
			}
			known[s.Field] = true

		case StepMultiChoice:
			if s.Field == "" || len(s.Options) == 0 {
				return fmt.Errorf("%w: funnel %q step %q needs a field and options", ErrInvalidFunnel, d.ID, s.ID)
			}
			if s.MinSelections != nil && (*s.MinSelections < 0 || *s.MinSelections > len(s.Options)) {
				return fmt.Errorf("%w: funnel %q step %q min_selections out of range", ErrInvalidFunnel, d.ID, s.ID)
			}
			if s.BonusThreshold < 0 || s.BonusThreshold > len(s.Options) {
				return fmt.Errorf("%w: funnel %q step %q bonus_threshold out of range", ErrInvalidFunnel, d.ID, s.ID)
			}
			known[s.Field] = true

		case StepTwoQuestions:
			if len(s.Questions) != 2 {
				return fmt.Errorf("%w: funnel %q step %q must have exactly two questions", ErrInvalidFunnel, d.ID, s.ID)
			}
			if err := validateQuestions(d.ID, s, known); err != nil {
				return err
			}

		case StepOptionalQualification:
			if len(s.Questions) == 0 {
				return fmt.Errorf("%w: funnel %q step %q has no questions", ErrInvalidFunnel, d.ID, s.ID)
			}
			if err := validateQuestions(d.ID, s, known); err != nil {
				return err
			}

		case StepContact:
			if len(s.ContactFields) == 0 {
				return fmt.Errorf("%w: funnel %q step %q has no contact fields", ErrInvalidFunnel, d.ID, s.ID)
			}
			for _, f := range s.ContactFields {
				if f.Name == "" {
					return fmt.Errorf("%w: funnel %q step %q has an unnamed contact field", ErrInvalidFunnel, d.ID, s.ID)
				}
				switch f.Kind {
				case InputText, InputEmail, InputTel:
				default:
					return fmt.Errorf("%w: funnel %q contact field %q has unknown input kind %q", ErrInvalidFunnel, d.ID, f.Name, f.Kind)
				}
				switch f.Validate {
				case ValidateNone, ValidateEmail, ValidatePhone, ValidatePLZ:
				default:
					return fmt.Errorf("%w: funnel %q contact field %q has unknown validation kind %q", ErrInvalidFunnel, d.ID, f.Name, f.Validate)
				}
				known[f.Name] = true
			}

		default:
			return fmt.Errorf("%w: funnel %q step %q has unknown type %q", ErrInvalidFunnel, d.ID, s.ID, s.Type)
		}
	}

	return nil
}

func validateQuestions(funnelID string, s Step, known map[string]bool) error {
	// Questions within one step may reference each other, so register all
	// of the step's fields before checking conditions.
	for _, q := range s.Questions {
		if q.Field == "" || len(q.Options) == 0 {
			return fmt.Errorf("%w: funnel %q step %q has a question without field or options", ErrInvalidFunnel, funnelID, s.ID)
		}
		known[q.Field] = true
	}
	for _, q := range s.Questions {
		if q.ShowIf == nil {
			continue
		}
		if !known[q.ShowIf.Field] {
			return fmt.Errorf("%w: funnel %q question %q show_if references unknown field %q",
				ErrInvalidFunnel, funnelID, q.Field, q.ShowIf.Field)
		}
	}
	return nil
}
