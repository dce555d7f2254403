package tenauth

// HOTPCode exposes hotpCode to external tests.
var HOTPCode = hotpCode
