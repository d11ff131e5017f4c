package constants

// User-facing banner texts shared between the session controller and the
// synchronizer.
const (
	MsgConnectionError   = "Connection error. Please check if backend is running."
	MsgNonJSONResponse   = "Server returned non-JSON response"
	MsgServerUnreachable = "Server not responding. Please check backend."

	MsgMissingCredentials = "Please enter email and password"
	MsgWelcomeBack        = "Welcome back, %s!"
	MsgWelcome            = "Welcome, %s!"
	MsgSignedOut          = "Signed out successfully!"

	MsgMealNameRequired  = "Please enter a meal name"
	MsgNutritionRequired = "Run AI estimation or fill in nutrition before saving"
	MsgMealSaved         = "Meal saved successfully!"
	MsgMealSavedLocally  = "Meal added locally!"
	MsgMealRemoved       = "Meal removed!"
	MsgMealRemoteDelete  = "Meal removed locally; the server could not be updated"
	MsgHistoryRemoved    = "Meal removed from history!"

	MsgEstimateInput    = "Please enter a meal name or upload an image"
	MsgEstimateDone     = "AI estimation complete!"
	MsgEstimateFailed   = "AI estimation failed: %s"
	MsgAnalysisFailed   = "Analysis failed: %s"
	MsgAnalysisComplete = "Analysis complete! +%d XP"

	MsgRecipeInput     = "Please enter some ingredients or upload a photo"
	MsgInvalidItems    = "Invalid items: %s. Suggestions: %s"
	MsgRecipeGenerated = "New personalized recipe generated successfully!"
	MsgRecipeError     = "Recipe generation error: %s"
	MsgRecipeLoadError = "Failed to load recipe details"
	MsgRecipeDeleted   = "Recipe deleted successfully!"
	MsgRecipeDeleteErr = "Failed to delete recipe"
	MsgRecipeSaved     = "Recipe saved to your collection!"

	MsgProfileUpdated = "Profile updated successfully!"
	MsgPhotoUpdated   = "Profile photo updated!"
	MsgCycleLogged    = "Cycle data logged!"
	MsgInFlight       = "Please wait, the previous request is still running"
)
