// Package checklist derives the required documents for a claim from its
// category, incident category and selected services.
package checklist

// Claim categories
const (
	CategoryReembolso    = "reembolso"
	CategoryProgramacion = "programacion"
	CategoryMaternidad   = "maternidad"
)

// Incident categories (reembolso only)
const (
	IncidentInicial     = "inicial"
	IncidentComplemento = "complemento"
)

// Service tags
const (
	ServiceHospitales          = "hospitales"
	ServiceHonorariosMedicos   = "honorarios-medicos"
	ServiceEstudiosLaboratorio = "estudios-laboratorio"
	ServiceMedicamentos        = "medicamentos"
	ServiceRehabilitacion      = "rehabilitacion"
	ServiceCirugia             = "cirugia"
	ServiceEstudiosEspeciales  = "estudios-especiales"
	ServiceParto               = "parto-natural"
	ServiceCesarea             = "cesarea"
)

// Group identifies one of the three fixed checklist sections
type Group string

const (
	GroupInsurerForms      Group = "insurer_forms"
	GroupPersonalInfo      Group = "personal_info"
	GroupIncidentDocuments Group = "incident_documents"
)

// Item is one required document slot
type Item struct {
	Key         string `json:"key"`
	DisplayName string `json:"display_name"`
	Required    bool   `json:"required"`
}

// Checklist groups the required documents of a claim
type Checklist struct {
	InsurerForms      []Item `json:"insurer_forms"`
	PersonalInfo      []Item `json:"personal_info"`
	IncidentDocuments []Item `json:"incident_documents"`
}

// Input is the resolver's input tuple
type Input struct {
	ClaimCategory        string
	IncidentCategory     string
	SelectedServices     []string
	IsSpecializedSurgery bool
}

// serviceRule appends documents to a group when a service tag is selected.
// when, if set, must also hold.
type serviceRule struct {
	service string
	group   Group
	items   []Item
	when    func(Input) bool
}

type categoryRules struct {
	insurerForms      []Item
	personalInfo      []Item
	incidentDocuments []Item
	services          []serviceRule
}

func item(key, name string) Item {
	return Item{Key: key, DisplayName: name, Required: true}
}

var rules = map[string]categoryRules{
	CategoryReembolso: {
		insurerForms: []Item{
			item("declaracion-siniestro", "Declaración de Siniestro"),
			item("informe-medico-aseguradora", "Informe Médico (Formato de la Aseguradora)"),
			item("solicitud-reembolso", "Solicitud de Reembolso"),
			item("planilla-datos-bancarios", "Planilla de Datos Bancarios"),
		},
		personalInfo: []Item{
			item("cedula-titular", "Cédula de Identidad del Titular"),
			item("cedula-paciente", "Cédula de Identidad del Paciente"),
			item("rif-titular", "RIF del Titular"),
		},
		incidentDocuments: []Item{
			item("informe-medico", "Informe Médico"),
			item("epicrisis", "Epicrisis o Resumen de Egreso"),
			item("relacion-gastos", "Relación de Gastos"),
		},
		services: []serviceRule{
			{service: ServiceHospitales, group: GroupIncidentDocuments, items: []Item{
				item("factura-hospitales", "Factura de Hospitales"),
			}},
			{service: ServiceHonorariosMedicos, group: GroupIncidentDocuments, items: []Item{
				item("factura-honorarios-medicos", "Factura de Honorarios Médicos"),
			}},
			{service: ServiceEstudiosLaboratorio, group: GroupIncidentDocuments, items: []Item{
				item("factura-estudios-laboratorio", "Factura de Estudios de Laboratorio e Imagenología"),
				item("estudios-laboratorio", "Estudios de Laboratorio e Imagenología"),
			}},
			{service: ServiceMedicamentos, group: GroupIncidentDocuments, items: []Item{
				item("factura-medicamentos", "Factura de Medicamentos"),
				item("receta-medicamentos", "Receta de Medicamentos"),
			}},
			{service: ServiceRehabilitacion, group: GroupIncidentDocuments, items: []Item{
				item("factura-rehabilitacion", "Factura de Rehabilitación"),
				item("recetas-rehabilitacion", "Recetas de Rehabilitación"),
				item("carnet-asistencia-rehabilitacion", "Carnet de Asistencia a Rehabilitación"),
			}},
		},
	},
	CategoryProgramacion: {
		insurerForms: []Item{
			item("solicitud-programacion", "Solicitud de Carta Aval"),
			item("informe-medico-aseguradora", "Informe Médico (Formato de la Aseguradora)"),
		},
		personalInfo: []Item{
			item("cedula-paciente", "Cédula de Identidad del Paciente"),
		},
		incidentDocuments: []Item{
			item("estudios-sustento-informe", "Estudios que Sustenten el Informe"),
		},
		services: []serviceRule{
			{service: ServiceCirugia, group: GroupInsurerForms, when: specializedSurgery, items: []Item{
				item("formato-cirugia-especializada", "Formato de Cirugía de Traumatología, Ortopedia y Neurocirugía"),
			}},
			{service: ServiceMedicamentos, group: GroupIncidentDocuments, items: []Item{
				item("recetas-medicamentos", "Recetas de Medicamentos"),
			}},
			{service: ServiceRehabilitacion, group: GroupIncidentDocuments, items: []Item{
				item("bitacora-medico", "Bitácora del Médico Tratante con Plan de Rehabilitación"),
			}},
		},
	},
	CategoryMaternidad: {
		insurerForms: []Item{
			item("solicitud-maternidad", "Solicitud de Beneficio de Maternidad"),
			item("informe-medico-aseguradora", "Informe Médico (Formato de la Aseguradora)"),
		},
		personalInfo: []Item{
			item("cedula-paciente", "Cédula de Identidad de la Paciente"),
		},
	},
}

// servicesByCategory lists the service tags a client may select per category
var servicesByCategory = map[string][]string{
	CategoryReembolso: {
		ServiceHospitales,
		ServiceHonorariosMedicos,
		ServiceEstudiosLaboratorio,
		ServiceMedicamentos,
		ServiceRehabilitacion,
	},
	CategoryProgramacion: {
		ServiceCirugia,
		ServiceEstudiosEspeciales,
		ServiceMedicamentos,
		ServiceRehabilitacion,
	},
	CategoryMaternidad: {
		ServiceParto,
		ServiceCesarea,
	},
}

func specializedSurgery(in Input) bool {
	return in.IsSpecializedSurgery
}

// Resolve returns the required-document checklist for the input. Fixed
// entries come first; service entries follow in rule order. Unknown
// categories yield three empty lists.
func Resolve(in Input) Checklist {
	out := Checklist{
		InsurerForms:      []Item{},
		PersonalInfo:      []Item{},
		IncidentDocuments: []Item{},
	}

	r, ok := rules[in.ClaimCategory]
	if !ok {
		return out
	}

	out.InsurerForms = append(out.InsurerForms, r.insurerForms...)
	out.PersonalInfo = append(out.PersonalInfo, r.personalInfo...)
	out.IncidentDocuments = append(out.IncidentDocuments, r.incidentDocuments...)

	selected := make(map[string]bool, len(in.SelectedServices))
	for _, s := range in.SelectedServices {
		selected[s] = true
	}

	for _, sr := range r.services {
		if !selected[sr.service] {
			continue
		}
		if sr.when != nil && !sr.when(in) {
			continue
		}
		switch sr.group {
		case GroupInsurerForms:
			out.InsurerForms = append(out.InsurerForms, sr.items...)
		case GroupPersonalInfo:
			out.PersonalInfo = append(out.PersonalInfo, sr.items...)
		case GroupIncidentDocuments:
			out.IncidentDocuments = append(out.IncidentDocuments, sr.items...)
		}
	}

	return out
}

// Items returns every entry in group order
func (c Checklist) Items() []Item {
	all := make([]Item, 0, len(c.InsurerForms)+len(c.PersonalInfo)+len(c.IncidentDocuments))
	all = append(all, c.InsurerForms...)
	all = append(all, c.PersonalInfo...)
	all = append(all, c.IncidentDocuments...)
	return all
}

// Keys returns every document key in group order
func (c Checklist) Keys() []string {
	items := c.Items()
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	return keys
}

// Contains reports whether key is one of the checklist's document slots
func (c Checklist) Contains(key string) bool {
	for _, it := range c.Items() {
		if it.Key == key {
			return true
		}
	}
	return false
}

// Lookup returns the display name of a document key within a claim
// category. Keys shared between categories may carry different names.
func Lookup(category, key string) (string, bool) {
	r, ok := rules[category]
	if !ok {
		return "", false
	}
	for _, group := range [][]Item{r.insurerForms, r.personalInfo, r.incidentDocuments} {
		for _, it := range group {
			if it.Key == key {
				return it.DisplayName, true
			}
		}
	}
	for _, sr := range r.services {
		for _, it := range sr.items {
			if it.Key == key {
				return it.DisplayName, true
			}
		}
	}
	return "", false
}

// IsKnownCategory reports whether category has resolver rules
func IsKnownCategory(category string) bool {
	_, ok := rules[category]
	return ok
}

// ServicesFor returns the service tags valid for a claim category
func ServicesFor(category string) []string {
	return append([]string(nil), servicesByCategory[category]...)
}

// IsValidService reports whether tag may be selected for category
func IsValidService(category, tag string) bool {
	for _, s := range servicesByCategory[category] {
		if s == tag {
			return true
		}
	}
	return false
}
