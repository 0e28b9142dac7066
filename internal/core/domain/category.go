package domain

// Category groups downloaded files by subject. Categories carry an
// explicit numeric key so directory listings keep a stable semantic
// order without relying on lexicographic label sorting.
type Category struct {
	// Key orders the category within the table.
	Key int

	// Label is the directory name used for placement, e.g. "01_Source_Data".
	Label string

	// Patterns are the filename tokens that map a file to this category.
	// Matching strips '-' and '_' and lowercases, so tokens are stored in
	// that normalised form.
	Patterns []string
}

// Labels for categories handled outside the general pattern pass.
const (
	// PIRankingsLabel is the principal-investigator rankings category.
	// PI files often contain department names too, so they are matched
	// before the general pattern pass.
	PIRankingsLabel = "06_PI_Rankings"

	// UncategorizedLabel is the fallback for files no rule matches.
	UncategorizedLabel = "09_Uncategorized"
)

// categories is the static category table, loaded once at process start
// and never mutated. Callers receive it only through Categories().
var categories = []Category{
	{
		Key:   1,
		Label: "01_Source_Data",
		Patterns: []string{
			"worldwide", "worldwidebrimr", "brimrworldwide",
			"allorgs", "medicalschoolsonly", "medicalschools",
			"contracts", "somcontracts", "worldwidecontractsonly",
		},
	},
	{
		Key:   2,
		Label: "02_School_Rankings",
		Patterns: []string{
			"schoolofmedicine",
			"schoolofdentistry", "dentistry",
			"schoolofnursing", "nursing",
			"schoolofpublichealth",
			"schoolofpharmacy", "pharmacy",
			"schoolofveterinarymedicine", "schoolofverterinarymedicine",
			"schoolsofveterinarymedicine", "veterinarymedicine",
			"schoolofosteopathicmedicine",
			"schoolofalliedhealth",
			"hospitals",
			"otherhealthprofessions",
		},
	},
	{
		Key:   3,
		Label: "03_Department_Summaries",
		Patterns: []string{
			"bydepartment", "bydepartmentr",
			"awardsbydepartment",
			"medicalschoolsandtheirdepartments",
			"medicalschoolsanddept", "medicalschoolanddept",
			"mastertemplatenihawards", "mastertemplatenihawardsr",
		},
	},
	{
		Key:   4,
		Label: "04_Basic_Science",
		Patterns: []string{
			"anatomycellbiol", "anatomycellbiology", "anatomycellbiologyr",
			"biochemistry", "biochemistryr",
			"biomedicalengineering",
			"genetics", "geneticsr",
			"microbiology", "microbiologyr",
			"neurosciences", "neurosciencesr",
			"pharmacology", "pharmacologyr",
			"physiology", "physiologyr",
			"otherbasicsciences",
		},
	},
	{
		Key:   5,
		Label: "05_Clinical_Depts",
		Patterns: []string{
			"anesthesiology", "anesthesiologyr",
			"dermatology", "dermatologyr",
			"emergencymedicine", "emergencymediciner",
			"familymedicine", "familymediciner",
			"medicine", "mediciner",
			"neurology", "neurologyr", "neurologyxls",
			"neurosurgery", "neurosurgeryr",
			"nutrition",
			"obgyn", "obgynr",
			"obstetrics", "obstetricsandgynecology", "obstetricsgynecology",
			"ophthalmology", "ophthalmologyr",
			"orthopedics", "orthopedicsr",
			"ent", "otolaryngology", "otolaryngologyr",
			"pathology", "pathologyr",
			"pediatrics", "pediatricsr",
			"physicalme", "physicalmed", "physicalmedicine", "physicalmediciner",
			"psychiatry", "psychiatryr",
			"publichealth", "publichealthr",
			"radiology", "radiologyr",
			"surgery", "surgeryr",
			"urology", "urologyr",
			"otherclinicalsciences",
		},
	},
	{
		Key:   6,
		Label: PIRankingsLabel,
		Patterns: []string{
			"pi", "allpis", "pisbyrank", "principalinvestigator",
			"allorgdeptpi", "deptorgpi", "deptschoolpi", "deptschoolpir",
			"schooldeptpi",
			"contractspi",
			// Basic science PI files
			"anatomycellbiolpi", "anatomycellbiologypi",
			"biochemistrypi",
			"biomedicalengineeringpi",
			"geneticspi",
			"microbiologypi",
			"neurosciencespi",
			"pharmacologypi", "pharmacologypir",
			"physiologypi", "physiologypi2xls", "physiologypir",
			// Clinical PI files
			"anesthesiologypi",
			"dermatologypi",
			"emergencymedicinepi",
			"familymedicinepi",
			"medicinepi",
			"neurologypi",
			"neurosurgerypi", "neurosurgerypir",
			"obgynpi", "obgynpir",
			"obstetricspi", "obstetricsandgynecologypi", "obstetricsgynecologypi",
			"ophthalmologypi", "ophthalmologypir",
			"orthopedicspi", "orthopedicspir",
			"otolaryngologypi", "otolaryngologypir",
			"pathologypi", "pathologypir",
			"pediatricspi", "pediatricspir",
			"physicalmedicinepi", "physicalmedicinepir",
			"psychiatrypi", "psychiatrypir",
			"publichealthpi", "publichealthpir",
			"radiologypi", "radiologypir",
			"surgerypi", "surgerypir", "surgerypibcorrecte",
			"urologypi", "urologypir",
		},
	},
	{
		Key:   7,
		Label: "07_Geographic",
		Patterns: []string{
			"state", "statesandcountries",
			"city", "allcities", "citiesbyrankr",
			"institution", "allinstitutions", "allinstitutionsr",
			"organization",
			"fundingrankbystate",
			"percapitafundingbystate", "percapitafundingrankbystate",
		},
	},
	{
		Key:   8,
		Label: "08_Other",
		Patterns: []string{
			"topten", "toptenr",
			"covidawards", "covid",
			"merit", "nihmerit",
		},
	},
}

// Categories returns the ordered category table.
// The returned slice must be treated as read-only.
func Categories() []Category {
	return categories
}
