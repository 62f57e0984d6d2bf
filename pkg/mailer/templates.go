package mailer

import (
	"fmt"
	"time"
)

// Render returns the subject and plain-text body for msg.
func Render(appName string, msg OTPMessage) (subject, body string) {
	minutes := int(msg.ExpiresIn.Round(time.Minute) / time.Minute)

	switch msg.Purpose {
	case PurposeSignup:
		subject = fmt.Sprintf("%s - Your Signup Verification Code", appName)
		body = fmt.Sprintf(
			"Hello,\n\n"+
				"Thank you for signing up for %s! To complete your registration, please use the verification code below:\n\n"+
				"Verification Code: %s\n\n"+
				"This code will expire in %d minutes.\n\n"+
				"Best regards,\nThe %s Team",
			appName, msg.Code, minutes, appName)

	case PurposeLogin:
		subject = fmt.Sprintf("%s - Your Login Verification Code", appName)
		body = fmt.Sprintf(
			"Hello,\n\n"+
				"You requested a code to log in to %s. Please use the verification code below to gain access:\n\n"+
				"Login Code: %s\n\n"+
				"This code will expire in %d minutes. If you did not request this login, we recommend changing your password.\n\n"+
				"Best regards,\nThe %s Team",
			appName, msg.Code, minutes, appName)

	case PurposePasswordReset:
		subject = fmt.Sprintf("%s - Password Reset Code", appName)
		body = fmt.Sprintf(
			"Hello,\n\n"+
				"We received a request to reset your %s password. Use the code below to choose a new one:\n\n"+
				"Reset Code: %s\n\n"+
				"This code will expire in %d minutes. If you did not ask for a reset, you can ignore this email.\n\n"+
				"Best regards,\nThe %s Team",
			appName, msg.Code, minutes, appName)

	default:
		subject = fmt.Sprintf("%s - Your Verification Code", appName)
		body = fmt.Sprintf("Your verification code is %s. It expires in %d minutes.", msg.Code, minutes)
	}

	return subject, body
}
