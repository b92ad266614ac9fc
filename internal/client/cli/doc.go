// Package cli renders the login and profile screens in a terminal REPL.
//
// Terminal implements the ui presentation contracts: popups are printed as
// they arrive, and confirmation popups are queued so the next input line
// answers the oldest one (y/yes confirms, anything else cancels). Screens
// are switched by the router; the REPL only accepts the commands of the
// active screen.
//
// Commands
//
//	Login screen:
//	  - signin | login    email/password sign-in
//	  - google            federated sign-in through the ID token picker
//	  - signup            create an account (verification mail is sent)
//	  - forgot            request a password reset mail
//	Profile screen:
//	  - show              print the profile again
//	  - name <new name>   change the display name
//	  - photo <url>       change the photo URL (empty clears it)
//	  - logout            end the session and forget remember-me
//	Memory backend only:
//	  - mail              list mails the backend would have sent
//	  - verify <code>     apply an email verification code
//	  - reset <code>      set a new password with a reset code
//	Everywhere:
//	  - help, exit | quit
//
// The App is started via App.Run(ctx), which blocks until the user exits.
package cli
