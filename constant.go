package iso8583

// Common Message Type Indicators. Responses differ from their request in the
// function digit.
const (
	MTIAuthorizationRequest  = "0100"
	MTIAuthorizationResponse = "0110"
	MTIFinancialRequest      = "0200"
	MTIFinancialResponse     = "0210"
	MTIReversalRequest       = "0400"
	MTIReversalResponse      = "0410"
	MTINetworkRequest        = "0800"
	MTINetworkResponse       = "0810"
)

// DefaultSchemas returns the ISO 8583:1987 field table used by DefaultRegistry.
// The returned slice is a fresh copy and may be modified to build a custom registry.
func DefaultSchemas() []Schema {
	return []Schema{
		binary(1, "SecondaryBitmap", 8),                                  // Bitmap, secondary; derived from presence, never set directly
		numericVar(2, "PrimaryAccountNumber", 19, 2),                     // Primary account number (PAN) n..19
		numeric(3, "ProcessingCode", 6),                                  // Processing code n6
		numeric(4, "AmountTransaction", 12),                              // Amount, transaction n12
		numeric(5, "AmountSettlement", 12),                               // Amount, settlement n12
		numeric(6, "AmountCardholderBilling", 12),                        // Amount, cardholder billing n12
		dated(alpha(7, "TransmissionDateTime", "n", 10), "MMddHHmmss"),   // Transmission date & time
		numeric(8, "AmountCardholderBillingFee", 8),                      // Amount, cardholder billing fee n8
		numeric(9, "ConversionRateSettlement", 8),                        // Conversion rate, settlement n8
		numeric(10, "ConversionRateCardholderBilling", 8),                // Conversion rate, cardholder billing n8
		numeric(11, "SystemTraceAuditNumber", 6),                         // System trace audit number (STAN) n6
		dated(alpha(12, "LocalTransactionTime", "n", 6), "HHmmss"),       // Time, local transaction
		dated(alpha(13, "LocalTransactionDate", "n", 4), "MMdd"),         // Date, local transaction
		dated(alpha(14, "ExpirationDate", "n", 4), "yyMM"),               // Date, expiration
		numeric(15, "SettlementDate", 4),                                 // Date, settlement n4
		dated(alpha(16, "CurrencyConversionDate", "n", 4), "MMdd"),       // Date, conversion
		numeric(17, "CaptureDate", 4),                                    // Date, capture n4
		numeric(18, "MerchantType", 4),                                   // Merchant type / merchant category code n4
		numeric(19, "AcquiringInstitutionCountryCode", 3),                // Acquiring institution country code n3
		numeric(20, "PANExtendedCountryCode", 3),                         // PAN extended, country code n3
		numeric(21, "ForwardingInstitutionCountryCode", 3),               // Forwarding institution country code n3
		numeric(22, "PointOfServiceEntryMode", 3),                        // Point of service entry mode n3
		numeric(23, "ApplicationPANSequenceNumber", 3),                   // Application PAN sequence number n3
		numeric(24, "FunctionCode", 3),                                   // Function code (1993) / network international identifier n3
		numeric(25, "PointOfServiceConditionCode", 2),                    // Point of service condition code n2
		numeric(26, "PointOfServiceCaptureCode", 2),                      // Point of service capture code n2
		numeric(27, "AuthorizingIdentificationResponseLength", 1),        // Authorizing identification response length n1
		signed(28, "AmountTransactionFee", 8),                            // Amount, transaction fee x+n8
		signed(29, "AmountSettlementFee", 8),                             // Amount, settlement fee x+n8
		signed(30, "AmountTransactionProcessingFee", 8),                  // Amount, transaction processing fee x+n8
		signed(31, "AmountSettlementProcessingFee", 8),                   // Amount, settlement processing fee x+n8
		numericVar(32, "AcquiringInstitutionIdentificationCode", 11, 2),  // Acquiring institution identification code n..11
		numericVar(33, "ForwardingInstitutionIdentificationCode", 11, 2), // Forwarding institution identification code n..11
		alphaVar(34, "PANExtended", "ns", 28, 2),                         // Primary account number, extended ns..28
		alphaVar(35, "Track2Data", "ns", 37, 2),                          // Track 2 data z..37
		alphaVar(36, "Track3Data", "ns", 104, 3),                         // Track 3 data ns...104
		alpha(37, "RetrievalReferenceNumber", "an", 12),                  // Retrieval reference number an12
		alpha(38, "AuthorizationIdentificationResponse", "an", 6),        // Authorization identification response an6
		alpha(39, "ResponseCode", "an", 2),                               // Response code an2
		alpha(40, "ServiceRestrictionCode", "an", 3),                     // Service restriction code an3
		alpha(41, "CardAcceptorTerminalIdentification", "ans", 8),        // Card acceptor terminal identification ans8
		alpha(42, "CardAcceptorIdentificationCode", "ans", 15),           // Card acceptor identification code ans15
		truncated(alpha(43, "CardAcceptorNameLocation", "ans", 40)),      // Card acceptor name/location ans40, cut when longer
		alphaVar(44, "AdditionalResponseData", "an", 25, 2),              // Additional response data an..25
		alphaVar(45, "Track1Data", "ans", 76, 2),                         // Track 1 data ans..76
		alphaVar(46, "AdditionalDataISO", "an", 999, 3),                  // Additional data, ISO an...999
		alphaVar(47, "AdditionalDataNational", "an", 999, 3),             // Additional data, national an...999
		alphaVar(48, "AdditionalDataPrivate", "an", 999, 3),              // Additional data, private an...999
		alpha(49, "CurrencyCodeTransaction", "an", 3),                    // Currency code, transaction an3
		alpha(50, "CurrencyCodeSettlement", "an", 3),                     // Currency code, settlement an3
		alpha(51, "CurrencyCodeCardholderBilling", "an", 3),              // Currency code, cardholder billing an3
		binary(52, "PINData", 8),                                         // Personal identification number data b8
		numeric(53, "SecurityRelatedControlInformation", 16),             // Security related control information n16
		alphaVar(54, "AdditionalAmounts", "ans", 120, 2),                 // Additional amounts an..120; two-digit prefix caps the wire at 99
		nested(55, "ICCData", 999, 3, TLVEMV),                            // ICC data, EMV tags
		alphaVar(56, "ReservedISO56", "ans", 999, 3),                     // Reserved ans...999
		alphaVar(57, "ReservedNational57", "ans", 999, 3),                // Reserved ans...999
		alphaVar(58, "ReservedNational58", "ans", 999, 3),                // Reserved ans...999
		alphaVar(59, "ReservedNational59", "ans", 999, 3),                // Reserved ans...999
		alphaVar(60, "ReservedNational60", "ans", 999, 3),                // Reserved ans...999
		alphaVar(61, "ReservedPrivate61", "ans", 999, 3),                 // Reserved ans...999
		alphaVar(62, "ReservedPrivate62", "ans", 999, 3),                 // Reserved ans...999
		alphaVar(63, "ReservedPrivate63", "ans", 999, 3),                 // Reserved ans...999
		binary(64, "MessageAuthenticationCode", 8),                       // Message authentication code b8
		binary(65, "TertiaryBitmap", 8),                                  // Bitmap, tertiary b8
		numeric(66, "SettlementCode", 1),                                 // Settlement code n1
		numeric(67, "ExtendedPaymentCode", 2),                            // Extended payment code n2
		numeric(68, "ReceivingInstitutionCountryCode", 3),                // Receiving institution country code n3
		numeric(69, "SettlementInstitutionCountryCode", 3),               // Settlement institution country code n3
		numeric(70, "NetworkManagementInformationCode", 3),               // Network management information code n3
		numeric(71, "MessageNumber", 4),                                  // Message number n4
		numeric(72, "MessageNumberLast", 4),                              // Message number, last n4
		numeric(73, "ActionDate", 6),                                     // Date, action (YYMMDD) n6
		numeric(74, "CreditsNumber", 10),                                 // n10
		numeric(75, "CreditsReversalNumber", 10),                         // n10
		numeric(76, "DebitsNumber", 10),                                  // n10
		numeric(77, "DebitsReversalNumber", 10),                          // n10
		numeric(78, "TransferNumber", 10),                                // n10
		numeric(79, "TransferReversalNumber", 10),                        // n10
		numeric(80, "InquiriesNumber", 10),                               // n10
		numeric(81, "AuthorizationsNumber", 10),                          // n10
		numeric(82, "CreditsProcessingFeeAmount", 12),                    // n12
		numeric(83, "CreditsTransactionFeeAmount", 12),                   // n12
		numeric(84, "DebitsProcessingFeeAmount", 12),                     // n12
		numeric(85, "DebitsTransactionFeeAmount", 12),                    // n12
		numeric(86, "CreditsAmount", 16),                                 // n16
		numeric(87, "CreditsReversalAmount", 16),                         // n16
		numeric(88, "DebitsAmount", 16),                                  // n16
		numeric(89, "DebitsReversalAmount", 16),                          // n16
		numeric(90, "OriginalDataElements", 42),                          // Original data elements n42
		alpha(91, "FileUpdateCode", "an", 1),                             // File update code an1
		alpha(92, "FileSecurityCode", "an", 2),                           // File security code an2
		alpha(93, "ResponseIndicator", "an", 5),                          // Response indicator an5
		alpha(94, "ServiceIndicator", "an", 7),                           // Service indicator an7
		alpha(95, "ReplacementAmounts", "an", 42),                        // Replacement amounts an42
		binary(96, "MessageSecurityCode", 8),                             // Message security code b8
		signed(97, "AmountNetSettlement", 16),                            // Amount, net settlement x+n16
		alpha(98, "Payee", "ans", 25),                                    // Payee ans25
		numericVar(99, "SettlementInstitutionIdentificationCode", 11, 2), // Settlement institution identification code n..11
		numericVar(100, "ReceivingInstitutionIdentificationCode", 11, 2), // Receiving institution identification code n..11
		alphaVar(101, "FileName", "ans", 17, 2),                          // File name ans..17
		alphaVar(102, "AccountIdentification1", "ans", 28, 2),            // Account identification 1 ans..28
		alphaVar(103, "AccountIdentification2", "ans", 28, 2),            // Account identification 2 ans..28
		alphaVar(104, "TransactionDescription", "ans", 100, 3),           // Transaction description ans...100
		alphaVar(105, "ReservedISO105", "ans", 999, 3),                   // Reserved for ISO use
		alphaVar(106, "ReservedISO106", "ans", 999, 3),                   // Reserved for ISO use
		alphaVar(107, "ReservedISO107", "ans", 999, 3),                   // Reserved for ISO use
		alphaVar(108, "ReservedISO108", "ans", 999, 3),                   // Reserved for ISO use
		alphaVar(109, "ReservedISO109", "ans", 999, 3),                   // Reserved for ISO use
		alphaVar(110, "ReservedISO110", "ans", 999, 3),                   // Reserved for ISO use
		alphaVar(111, "ReservedISO111", "ans", 999, 3),                   // Reserved for ISO use
		alphaVar(112, "ReservedNational112", "ans", 999, 3),              // Reserved for national use
		alphaVar(113, "ReservedNational113", "ans", 999, 3),              // Reserved for national use
		alphaVar(114, "ReservedNational114", "ans", 999, 3),              // Reserved for national use
		alphaVar(115, "ReservedNational115", "ans", 999, 3),              // Reserved for national use
		alphaVar(116, "ReservedNational116", "ans", 999, 3),              // Reserved for national use
		alphaVar(117, "ReservedNational117", "ans", 999, 3),              // Reserved for national use
		alphaVar(118, "ReservedNational118", "ans", 999, 3),              // Reserved for national use
		alphaVar(119, "ReservedNational119", "ans", 999, 3),              // Reserved for national use
		alphaVar(120, "ReservedPrivate120", "ans", 999, 3),               // Reserved for private use
		alphaVar(121, "ReservedPrivate121", "ans", 999, 3),               // Reserved for private use
		alphaVar(122, "ReservedPrivate122", "ans", 999, 3),               // Reserved for private use
		alphaVar(123, "ReservedPrivate123", "ans", 999, 3),               // Reserved for private use
		alphaVar(124, "ReservedPrivate124", "ans", 999, 3),               // Reserved for private use
		alphaVar(125, "ReservedPrivate125", "ans", 999, 3),               // Reserved for private use
		alphaVar(126, "ReservedPrivate126", "ans", 999, 3),               // Reserved for private use
		alphaVar(127, "ReservedPrivate127", "ans", 999, 3),               // Reserved for private use
		binary(128, "MessageAuthenticationCode2", 8),                     // Message authentication code b8
	}
}

func numeric(number int, name string, length int) Schema {
	return Schema{Number: number, Name: name, Type: TypeNumeric, LengthType: Fixed, Length: length}
}

func numericVar(number int, name string, length, prefix int) Schema {
	return Schema{Number: number, Name: name, Type: TypeNumeric, LengthType: Variable, Length: length, PrefixDigits: prefix}
}

func signed(number int, name string, length int) Schema {
	s := numeric(number, name, length)
	s.Signed = true
	return s
}

// alpha builds a fixed alpha field. charset is the ISO notation: any
// combination of a (letters), n (digits) and s (special characters).
func alpha(number int, name, charset string, length int) Schema {
	s := Schema{Number: number, Name: name, Type: TypeAlpha, LengthType: Fixed, Length: length}
	applyCharset(&s, charset)
	return s
}

func alphaVar(number int, name, charset string, length, prefix int) Schema {
	s := Schema{Number: number, Name: name, Type: TypeAlpha, LengthType: Variable, Length: length, PrefixDigits: prefix}
	applyCharset(&s, charset)
	return s
}

func applyCharset(s *Schema, charset string) {
	for _, c := range charset {
		switch c {
		case 'a':
			s.AllowLetters = true
		case 'n':
			s.AllowDigits = true
		case 's':
			s.AllowSpecial = true
		}
	}
}

func binary(number int, name string, length int) Schema {
	return Schema{Number: number, Name: name, Type: TypeBinary, LengthType: Fixed, Length: length}
}

func nested(number int, name string, length, prefix int, tlv TLVType) Schema {
	return Schema{Number: number, Name: name, Type: TypeNested, LengthType: Variable, Length: length, PrefixDigits: prefix, TLV: tlv}
}

func dated(s Schema, pattern string) Schema {
	s.DatePattern = pattern
	return s
}

func truncated(s Schema) Schema {
	s.Truncate = true
	return s
}
