package vision

// receiptPrompt asks the model for a single JSON object describing the receipt.
const receiptPrompt = `Please analyze this fuel receipt image and extract the following information in JSON format:
{
    "stationName": "Name of gas station",
    "stationBrand": "Brand (Shell, BP, Exxon, etc.)",
    "address": "Complete address if visible",
    "city": "City name",
    "state": "State abbreviation",
    "zipCode": "ZIP code",
    "totalAmount": "Total amount paid (number only, no currency symbol)",
    "liters": "Number of liters purchased (floating point number only)",
    "pricePerLiter": "Price per liter (floating point number only)",
    "fuelType": "Type of fuel (Petrol, Diesel, CNG, LPG, etc.)",
    "fuelGrade": "Grade of fuel (Regular, Premium, etc.)",
    "purchaseDateTime": "Date and time of purchase in ISO format",
    "receiptNumber": "Receipt or transaction number",
    "paymentMethod": "Payment method (Credit, Debit, Cash, etc.)",
    "confidence": "Your confidence level in this extraction (0-1)"
}

If any field is not clearly visible or readable, set it to null.
Respond with ONLY the JSON object, no additional text.`
