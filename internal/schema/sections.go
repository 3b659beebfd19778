package schema

// canonicalSections lists every questionnaire section in the order the
// dashboard and the compiled document present them. Ids are dash-separated to
// match the questionnaire routes (e.g. /questionnaire/hospital-info).
var canonicalSections = []SectionSchema{
	{
		ID:          "hospital-info",
		Title:       "Hospital Info",
		Description: "Name, address, logo and contact details",
		Fields: []FieldDefinition{
			{Name: "hospitalName", Label: "Hospital name", Type: FieldText, Required: true, HelpText: "Will appear on cover page and headers"},
			{Name: "hospitalLogo", Label: "Hospital logo upload", Type: FieldFile, HelpText: "Top-left on each SOP page. Provide vector if available"},
			{Name: "addressFull", Label: "Hospital full address", Type: FieldTextarea, Required: true, HelpText: "Used on cover and footer"},
			{Name: "primaryPhone", Label: "Primary phone number", Type: FieldPhone, Required: true, HelpText: "Main contact for public queries"},
			{Name: "primaryEmail", Label: "Primary email", Type: FieldEmail, HelpText: "Displayed on cover and contact block"},
			{Name: "website", Label: "Website", Type: FieldText, HelpText: "Displayed on contact block"},
			{Name: "hospitalLogoAltText", Label: "Logo alt text", Type: FieldText},
		},
	},
	{
		ID:          "document-metadata",
		Title:       "Document Metadata",
		Description: "SOP title, reference number, dates, authors and approvers",
		Fields: []FieldDefinition{
			{Name: "sopTitle", Label: "Title of the SOP", Type: FieldText, Required: true},
			{Name: "documentNumber", Label: "Document number", Type: FieldText, Required: true, HelpText: "Use hospital numbering convention"},
			{Name: "creationDate", Label: "Date of creation", Type: FieldDate, Required: true},
			{Name: "implementationDate", Label: "Date of implementation", Type: FieldDate, Required: true},
			{Name: "preparedBy", Label: "Prepared by (name and designation)", Type: FieldText, Required: true},
			{Name: "approvedBy", Label: "Approved by (name and designation)", Type: FieldText, Required: true},
			{Name: "documentVersion", Label: "Initial version number", Type: FieldText, Required: true},
			{Name: "approxPages", Label: "Approximate number of pages", Type: FieldNumber, HelpText: "Optional - used for printing estimates"},
		},
	},
	{
		ID:          "control-distribution",
		Title:       "Control & Distribution",
		Description: "Who controls the manual and where copies are stored",
		Fields: []FieldDefinition{
			{Name: "documentOwner", Label: "Document controller (name & designation)", Type: FieldText, Required: true},
			{
				Name: "distributionList", Label: "Distribution list (who receives copies)", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"recipientName":        {Type: FieldText, Required: true},
					"recipientDesignation": {Type: FieldText},
					"copyType":             {Type: FieldSelect, Options: []string{"Hard copy", "Soft copy (PDF)", "Server copy"}, Required: true},
				},
				HelpText: "E.g., Chairman, CEO, Quality Head, HODs, Nurse In-Charge",
			},
			{Name: "acknowledgementNeeded", Label: "Require acknowledgement on receipt", Type: FieldSelect, Options: []string{"Yes", "No"}, Required: true},
			{Name: "storageLocations", Label: "Soft & hard copy storage locations", Type: FieldTextarea, Required: true},
		},
	},
	{
		ID:          "purpose-scope",
		Title:       "Purpose & Scope",
		Description: "Purpose, scope and objectives of the SOP",
		Fields: []FieldDefinition{
			{Name: "purposeStatement", Label: "Purpose statement", Type: FieldTextarea, Required: true},
			{Name: "scopeDescription", Label: "Scope", Type: FieldTextarea, Required: true},
			{Name: "applicabilityExceptions", Label: "Applicability exceptions (if any)", Type: FieldTextarea},
			{
				Name: "objectivesList", Label: "Objectives (list measurable outcomes)", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"objectiveText": {Type: FieldText, Required: true},
				},
				HelpText: "E.g., Standardize admission process, Reduce admission TAT to X minutes",
			},
		},
	},
	{
		ID:          "responsibilities-contacts",
		Title:       "Responsibilities & Contacts",
		Description: "Roles, escalation matrix and key contacts",
		Fields: []FieldDefinition{
			{
				Name: "roleMatrix", Label: "Roles and responsibilities", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"roleTitle":      {Type: FieldText, Required: true},
					"responsibility": {Type: FieldTextarea, Required: true},
					"department":     {Type: FieldText},
				},
				Required: true,
			},
			{
				Name: "escalationMatrix", Label: "Escalation matrix", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"level":       {Type: FieldText, Required: true},
					"contactName": {Type: FieldText, Required: true},
					"contactNo":   {Type: FieldText, Required: true},
				},
			},
			{Name: "emergencyContact", Label: "24x7 emergency contact", Type: FieldPhone, Required: true},
		},
	},
	{
		ID:          "policies-procedures",
		Title:       "Policies & Procedures",
		Description: "Main policy statements and step-by-step procedures",
		Fields: []FieldDefinition{
			{Name: "policyStatement", Label: "Main policy statement", Type: FieldTextarea, Required: true},
			{Name: "procedureOverview", Label: "Procedure overview (summary flow)", Type: FieldTextarea, Required: true},
			{
				Name: "procedureSteps", Label: "Step-by-step procedures", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"stepOrder":       {Type: FieldNumber, Required: true},
					"stepTitle":       {Type: FieldText, Required: true},
					"stepDescription": {Type: FieldTextarea, Required: true},
					"relatedForms":    {Type: FieldMultiSelect, Options: []string{"Registration Form", "Consent Form", "Transfer Summary", "Discharge Summary", "Investigation Request", "Referral Letter", "Other"}},
				},
				Required: true,
				HelpText: "Use multiple entries to describe the entire SOP process in ordered steps",
			},
			{Name: "caseClassifications", Label: "Case types / classifications", Type: FieldMultiSelect, Options: []string{"Elective", "Emergency", "Daycare / OPD", "ICU admission", "Referral", "Other"}},
			{
				Name: "formsRequired", Label: "Forms and documents required", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"formName":       {Type: FieldText, Required: true},
					"formPurpose":    {Type: FieldText},
					"templateUpload": {Type: FieldFile},
				},
				Required: true,
				HelpText: "Attach templates where available",
			},
			{
				Name: "checklistsTemplates", Label: "Checklists / templates to include", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"checklistName": {Type: FieldText, Required: true},
					"attachFile":    {Type: FieldFile},
				},
			},
		},
	},
	{
		ID:          "quality-kpis",
		Title:       "Quality & KPIs",
		Description: "Turnaround times, KPIs and monitoring mechanisms",
		Fields: []FieldDefinition{
			{
				Name: "expectedTAT", Label: "Expected turnaround times (TAT) or service standards", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"activity": {Type: FieldText, Required: true},
					"tatValue": {Type: FieldText, Required: true},
				},
			},
			{Name: "performanceMonitoring", Label: "How performance will be monitored", Type: FieldMultiSelect, Options: []string{"Audits", "Checklists", "Monthly KPI dashboard", "Feedback forms", "Incident reports", "NABH audit"}, Required: true},
			{
				Name: "kpiList", Label: "KPIs and measurable outcomes", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"kpiName":   {Type: FieldText, Required: true},
					"kpiTarget": {Type: FieldText, Required: true},
					"frequency": {Type: FieldSelect, Options: []string{"Daily", "Weekly", "Monthly", "Quarterly"}, Required: true},
				},
			},
			{Name: "auditOwner", Label: "Department responsible for audits", Type: FieldText, Required: true},
		},
	},
	{
		ID:          "training-compliance",
		Title:       "Training & Compliance",
		Description: "Staff training, orientation and audit schedule",
		Fields: []FieldDefinition{
			{Name: "trainingMethod", Label: "How training/orientation will be delivered", Type: FieldMultiSelect, Options: []string{"In-person classroom", "On-the-job", "E-learning (LMS)", "Simulation / Drills", "Train the Trainer"}, Required: true},
			{Name: "trainingFrequency", Label: "Refresher training frequency", Type: FieldSelect, Options: []string{"Monthly", "Quarterly", "Biannual", "Annually", "As-required"}, Required: true},
			{Name: "trainingRecordsOwner", Label: "Department responsible for training records", Type: FieldText, Required: true},
			{Name: "complianceAuditSchedule", Label: "Compliance and audit schedule (summary)", Type: FieldTextarea},
		},
	},
	{
		ID:          "references-version-control",
		Title:       "References & Version Control",
		Description: "Standards referenced and revision history",
		Fields: []FieldDefinition{
			{Name: "standardsReferenced", Label: "Standards referenced", Type: FieldMultiSelect, Options: []string{"NABH", "JCI", "AERB", "ISO 9001", "State health regulations", "Other"}},
			{
				Name: "referenceDocs", Label: "Reference documents", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"docTitle":  {Type: FieldText, Required: true},
					"docSource": {Type: FieldText},
				},
			},
			{
				Name: "revisionHistory", Label: "Revision history", Type: FieldRepeater,
				ItemSchema: map[string]ItemField{
					"version":       {Type: FieldText, Required: true},
					"revisionDate":  {Type: FieldDate, Required: true},
					"changeSummary": {Type: FieldTextarea, Required: true},
				},
			},
			{Name: "nextReviewDate", Label: "Next scheduled review date", Type: FieldDate, Required: true},
		},
	},
	{
		ID:          "layout-branding",
		Title:       "Layout & Branding",
		Description: "Cover, footer, page style and controlled document footer",
		Fields: []FieldDefinition{
			{Name: "includeCoverPage", Label: "Include cover page", Type: FieldSelect, Options: []string{"Yes", "No"}, Required: true},
			{Name: "coverElements", Label: "Cover page elements", Type: FieldMultiSelect, Options: []string{"Title", "Logo", "Document number", "Prepared by", "Approved by", "Date", "Address"}},
			{Name: "footerControlledDoc", Label: "Include Controlled Document footer", Type: FieldSelect, Options: []string{"Yes", "No"}, Required: true, HelpText: "Displays version and revision date on footer"},
			{Name: "pageStyle", Label: "Page style & fonts", Type: FieldSelect, Options: []string{"Default (Hospital brand colors)", "Minimal (black & white)", "Compact (smaller margins)"}, Required: true},
			{Name: "headerElements", Label: "Header elements", Type: FieldMultiSelect, Options: []string{"Logo", "Hospital name", "SOP title", "Document number", "Page number"}},
			{Name: "customBrandColors", Label: "Brand primary color (hex)", Type: FieldText, HelpText: "Optional - used to style headings"},
		},
	},
}
