// SPDX-License-Identifier: MPL-2.0

package params

// PipelineName is the identifier of the wrapped pipeline, used in log paths.
const PipelineName = "nf_nf_core_proteomicslfq"

// Default returns the parameter registry of nf-core/proteomicslfq.
func Default() *Registry {
	return MustNew(ProteomicsLFQ()...)
}

// ProteomicsLFQ returns the nf-core/proteomicslfq parameter descriptors in
// declaration order.
func ProteomicsLFQ() []Spec {
	return []Spec{
		// Input/output options
		{
			Name: "input", Kind: KindString, Required: true,
			Section:     "Input/output options",
			Description: "URI/path to an [SDRF](https://github.com/bigbio/proteomics-metadata-standard/tree/master/annotated-projects) file **OR** globbing pattern for URIs/paths of mzML or Thermo RAW files",
		},
		{
			Name: "outdir", Kind: KindDir, Output: true,
			Description: "The output directory where the results will be saved.",
		},
		{
			Name: "email", Kind: KindString,
			Description: "Email address for completion summary.",
		},

		// Main parameters (SDRF)
		{
			Name: "root_folder", Kind: KindString,
			Section:     "Main parameters (SDRF)",
			Description: "Root folder in which the spectrum files specified in the SDRF are searched",
		},
		{
			Name: "local_input_type", Kind: KindString,
			Description: "Overwrite the file type/extension of the filename as specified in the SDRF",
		},

		// Main parameters (spectra files)
		{
			Name: "expdesign", Kind: KindString,
			Section:     "Main parameters (spectra files)",
			Description: "A tab-separated experimental design file in OpenMS' own format. All input files need to be present as a row with exactly the same names. If no design is given, unrelated, unfractionated runs are assumed.",
		},

		// Protein database
		{
			Name: "database", Kind: KindString, Required: true,
			Section:     "Protein database",
			Description: "The `fasta` protein database used during database search.",
		},
		{
			Name: "add_decoys", Kind: KindBool,
			Description: "Generate and append decoys to the given protein database",
		},
		{
			Name: "decoy_affix", Kind: KindString, Default: String("DECOY_"),
			Description: "Pre- or suffix of decoy proteins in their accession",
		},
		{
			Name: "affix_type", Kind: KindString, Default: String("prefix"),
			Description: "Location of the decoy marker string in the fasta accession. Before (prefix) or after (suffix)",
		},

		// Spectrum preprocessing
		{
			Name: "openms_peakpicking", Kind: KindBool,
			Section:     "Spectrum preprocessing",
			Description: "Activate OpenMS-internal peak picking",
		},
		{
			Name: "peakpicking_inmemory", Kind: KindBool,
			Description: "Perform peakpicking in memory",
		},
		{
			Name: "peakpicking_ms_levels", Kind: KindString,
			Description: "Which MS levels to pick as comma separated list. Leave empty for auto-detection.",
		},

		// Database search
		{
			Name: "search_engines", Kind: KindString, Default: String("comet"),
			Section:     "Database search",
			Description: "A comma separated list of search engines. Valid: comet, msgf",
		},
		{
			Name: "enzyme", Kind: KindString, Default: String("Trypsin"),
			Description: "The enzyme to be used for in-silico digestion, in 'OpenMS format'",
		},
		{
			Name: "num_enzyme_termini", Kind: KindString, Default: String("fully"),
			Description: "Specify the amount of termini matching the enzyme cutting rules for a peptide to be considered. Valid values are `fully` (default), `semi`, or `none`",
		},
		{
			Name: "allowed_missed_cleavages", Kind: KindInt, Default: Int(2),
			Description: "Specify the maximum number of allowed missed enzyme cleavages in a peptide. The parameter is not applied if `unspecific cleavage` is specified as enzyme.",
		},
		{
			Name: "precursor_mass_tolerance", Kind: KindFloat, Default: Float(5),
			Description: "Precursor mass tolerance used for database search. For High-Resolution instruments a precursor mass tolerance value of 5 ppm is recommended (i.e. 5). See also `--precursor_mass_tolerance_unit`.",
		},
		{
			Name: "precursor_mass_tolerance_unit", Kind: KindString, Default: String("ppm"),
			Description: "Precursor mass tolerance unit used for database search. Possible values are 'ppm' (default) and 'Da'.",
		},
		{
			Name: "fragment_mass_tolerance", Kind: KindFloat, Default: Float(0.03),
			Description: "Fragment mass tolerance used for database search. The default of 0.03 Da is for high-resolution instruments.",
		},
		{
			Name: "fragment_mass_tolerance_unit", Kind: KindString, Default: String("Da"),
			Description: "Fragment mass tolerance unit used for database search. Possible values are 'ppm' (default) and 'Da'.",
		},
		{
			Name: "fixed_mods", Kind: KindString, Default: String("Carbamidomethyl (C)"),
			Description: "A comma-separated list of fixed modifications with their Unimod name to be searched during database search",
		},
		{
			Name: "variable_mods", Kind: KindString, Default: String("Oxidation (M)"),
			Description: "A comma-separated list of variable modifications with their Unimod name to be searched during database search",
		},
		{
			Name: "isotope_error_range", Kind: KindString, Default: String("0,1"),
			Description: "Comma-separated range of integers with allowed isotope peak errors for precursor tolerance (MS-GF+ parameter '-ti'). E.g. -1,2",
		},
		{
			Name: "instrument", Kind: KindString, Default: String("high_res"),
			Description: "Type of instrument that generated the data. 'low_res' or 'high_res' (default; refers to LCQ and LTQ instruments)",
		},
		{
			Name: "protocol", Kind: KindString, Default: String("automatic"),
			Description: "MSGF only: Labeling or enrichment protocol used, if any. Default: automatic",
		},
		{
			Name: "min_precursor_charge", Kind: KindInt, Default: Int(2),
			Description: "Minimum precursor ion charge. Omit the '+'",
		},
		{
			Name: "max_precursor_charge", Kind: KindInt, Default: Int(4),
			Description: "Maximum precursor ion charge. Omit the '+'",
		},
		{
			Name: "min_peptide_length", Kind: KindInt, Default: Int(6),
			Description: "Minimum peptide length to consider (works with MSGF and in newer Comet versions)",
		},
		{
			Name: "max_peptide_length", Kind: KindInt, Default: Int(40),
			Description: "Maximum peptide length to consider (works with MSGF and in newer Comet versions)",
		},
		{
			Name: "num_hits", Kind: KindInt, Default: Int(1),
			Description: "Specify the maximum number of top peptide candidates per spectrum to be reported by the search engine. Default: 1",
		},
		{
			Name: "max_mods", Kind: KindInt, Default: Int(3),
			Description: "Maximum number of modifications per peptide. If this value is large, the search may take very long.",
		},
		{
			Name: "db_debug", Kind: KindInt,
			Description: "Debug level when running the database search. Logs become more verbose and at '>5' temporary files are kept.",
		},

		// Modification localization
		{
			Name: "enable_mod_localization", Kind: KindBool,
			Section:     "Modification localization",
			Description: "Turn the mechanism on.",
		},
		{
			Name: "mod_localization", Kind: KindString, Default: String("Phospho (S),Phospho (T),Phospho (Y)"),
			Description: "Which variable modifications to use for scoring their localization.",
		},

		// Peptide re-indexing
		{
			Name: "allow_unmatched", Kind: KindString, Default: String("false"),
			Section:     "Peptide re-indexing",
			Description: "Do not fail if there are some unmatched peptides. Only activate as last resort, if you know that the rest of your settings are fine!",
		},
		{
			Name: "IL_equivalent", Kind: KindString, Default: String("true"),
			Description: "Should isoleucine and leucine be treated interchangeably when mapping search engine hits to the database? Default: true",
		},

		// PSM re-scoring (general)
		{
			Name: "posterior_probabilities", Kind: KindString, Default: String("percolator"),
			Section: "PSM re-scoring (general)",
			Description: "How to calculate posterior probabilities for PSMs:\n\n" +
				"* 'percolator' = Re-score based on PSM-feature-based SVM and transform distance\n" +
				"    to hyperplane for posteriors\n" +
				"* 'fit_distributions' = Fit positive and negative distributions to scores\n" +
				"    (similar to PeptideProphet)",
		},
		{
			Name: "psm_pep_fdr_cutoff", Kind: KindFloat, Default: Float(0.1),
			Description: "FDR cutoff on PSM level (or potential peptide level; see Percolator options) before going into feature finding, map alignment and inference.",
		},
		{
			Name: "pp_debug", Kind: KindInt,
			Description: "Debug level when running the re-scoring. Logs become more verbose and at '>5' temporary files are kept.",
		},

		// PSM re-scoring (Percolator)
		{
			Name: "FDR_level", Kind: KindString, Default: String("peptide-level-fdrs"),
			Section:     "PSM re-scoring (Percolator)",
			Description: "Calculate FDR on PSM ('psm-level-fdrs') or peptide level ('peptide-level-fdrs')?",
		},
		{
			Name: "train_FDR", Kind: KindFloat, Default: Float(0.05),
			Description: "The FDR cutoff to be used during training of the SVM.",
		},
		{
			Name: "test_FDR", Kind: KindFloat, Default: Float(0.05),
			Description: "The FDR cutoff to be used during testing of the SVM.",
		},
		{
			Name: "subset_max_train", Kind: KindInt, Default: Int(300000),
			Description: "Only train an SVM on a subset of PSMs, and use the resulting score vector to evaluate the other PSMs. Recommended when analyzing huge numbers (>1 million) of PSMs. When set to 0, all PSMs are used for training as normal. This is a runtime vs. discriminability tradeoff. Default: 300,000",
		},
		{
			Name: "description_correct_features", Kind: KindInt,
			Description: "Use additional features whose values are learnt by correct entries. See help text. Default: 0 = none",
		},

		// PSM re-scoring (distribution fitting)
		{
			Name: "outlier_handling", Kind: KindString, Default: String("none"),
			Section: "PSM re-scoring (distribution fitting)",
			Description: "How to handle outliers during fitting:\n\n" +
				"* ignore_iqr_outliers (default): ignore outliers outside of `3*IQR` from Q1/Q3 for fitting\n" +
				"* set_iqr_to_closest_valid: set IQR-based outliers to the last valid value for fitting\n" +
				"* ignore_extreme_percentiles: ignore everything outside 99th and 1st percentile (also removes equal values like potential censored max values in XTandem)\n" +
				"* none: do nothing",
		},

		// Consensus ID
		{
			Name: "consensusid_algorithm", Kind: KindString, Default: String("best"),
			Section:     "Consensus ID",
			Description: "How to combine the probabilities from the single search engines: best, combine using a sequence similarity-matrix (PEPMatrix), combine using shared ion count of peptides (PEPIons). See help for further info.",
		},
		{
			Name: "consensusid_considered_top_hits", Kind: KindInt,
			Description: "Only use the top N hits per search engine and spectrum for combination. Default: 0 = all",
		},
		{
			Name: "min_consensus_support", Kind: KindInt,
			Description: "A threshold for the ratio of occurence/similarity scores of a peptide in other runs, to be reported. See help.",
		},

		// Protein inference
		{
			Name: "protein_inference", Kind: KindString, Default: String("aggregation"),
			Section:     "Protein inference ",
			Description: "The inference method to use. 'aggregation' (default) or 'bayesian'.",
		},
		{
			Name: "protein_level_fdr_cutoff", Kind: KindFloat, Default: Float(0.05),
			Description: "The experiment-wide protein (group)-level FDR cutoff. Default: 0.05",
		},

		// Protein Quantification
		{
			Name: "protein_quant", Kind: KindString, Default: String("unique_peptides"),
			Section: "Protein Quantification",
			Description: "Quantify proteins based on:\n\n" +
				"* 'unique_peptides' = use peptides mapping to single proteins or a group of indistinguishable proteins (according to the set of experimentally identified peptides)\n" +
				"* 'strictly_unique_peptides' = use peptides mapping to a unique single protein only\n" +
				"* 'shared_peptides' = use shared peptides, too, but only greedily for its best group (by inference score)",
		},
		{
			Name: "quantification_method", Kind: KindString, Default: String("feature_intensity"),
			Description: "Choose between feature-based quantification based on integrated MS1 signals ('feature_intensity'; default) or spectral counting of PSMs ('spectral_counting'). **WARNING:** 'spectral_counting' is not compatible with our MSstats step yet. MSstats will therefore be disabled automatically with that choice.",
		},
		{
			Name: "mass_recalibration", Kind: KindBool,
			Description: "Recalibrates masses based on precursor mass deviations to correct for instrument biases. (default: 'false')",
		},
		{
			Name: "transfer_ids", Kind: KindString, Default: String("false"),
			Description: "Tries a targeted requantification in files where an ID is missing, based on aggregate properties (i.e. RT) of the features in other aligned files (e.g. 'mean' of RT). (**WARNING:** increased memory consumption and runtime). 'false' turns this feature off. (default: 'false')",
		},
		{
			Name: "targeted_only", Kind: KindBool, Default: Bool(true),
			Description: "Only looks for quantifiable features at locations with an identified spectrum. Set to false to include unidentified features so they can be linked and matched to identified ones (= match between runs). (default: 'true')",
		},
		{
			Name: "inf_quant_debug", Kind: KindInt,
			Description: "Debug level when running the re-scoring. Logs become more verbose and at '>666' potentially very large temporary files are kept.",
		},

		// Statistical post-processing
		{
			Name: "skip_post_msstats", Kind: KindBool,
			Section:     "Statistical post-processing",
			Description: "Skip MSstats for statistical post-processing?",
		},
		{
			Name: "ref_condition", Kind: KindString,
			Description: "Instead of all pairwise contrasts (default), uses the given condition name/number (corresponding to your experimental design) as a reference and creates pairwise contrasts against it. (not yet fully implemented)",
		},
		{
			Name: "contrasts", Kind: KindString,
			Description: "Allows full control over contrasts by specifying a set of contrasts in a semicolon seperated list of R-compatible contrasts with the condition names/numbers as variables (e.g. `1-2;1-3;2-3`). Overwrites '--ref_condition' (not yet fully implemented)",
		},

		// Quality control
		{
			Name: "enable_qc", Kind: KindBool,
			Section:     "Quality control",
			Description: "Enable generation of quality control report by PTXQC? default: 'false' since it is still unstable",
		},
		{
			Name: "ptxqc_report_layout", Kind: KindString,
			Description: "Specify a yaml file for the report layout (see PTXQC documentation) (not yet fully implemented)",
		},
	}
}
